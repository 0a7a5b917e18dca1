// Package savant provides a Go client for the savant-judge scoring
// service. It scores (prompt, answer) pairs for semantic quality.
//
//	client := savant.New("http://localhost:8080",
//	    savant.WithAPIKey("secret"),
//	)
//	res, err := client.Judge(ctx, "what is go?", "a programming language")
//	if err != nil { ... }
//	fmt.Println(res.Scores.PGood)
package savant
