// Command savantbench runs the latency and hardening harness against a
// live judge service and evaluates the release gate.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/antonypamo/savant-real/internal/bench"
	logpkg "github.com/antonypamo/savant-real/internal/logger"
	"github.com/antonypamo/savant-real/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "savantbench",
		Usage:   "Benchmark and gate a running savant-judge service",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "base-url",
				Usage:    "Base URL of the running service",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Scoring endpoint path",
				Value: "/judge",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Bearer token for the scoring endpoint",
				Sources: cli.EnvVars("JUDGE_API_KEY"),
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Directory for JSON artifacts",
				Value: "artifacts",
			},
			&cli.IntFlag{
				Name:  "n",
				Usage: "Benchmark request count",
				Value: 50,
			},
			&cli.IntFlag{
				Name:  "warmup",
				Usage: "Warmup requests before measuring",
				Value: 8,
			},
			&cli.IntFlag{
				Name:  "discard",
				Usage: "Discard the first N measured samples",
				Value: 5,
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, err := logpkg.NewLogger("local", "info")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	runner := bench.NewRunner(bench.Options{
		BaseURL:  cmd.String("base-url"),
		Endpoint: cmd.String("endpoint"),
		APIKey:   cmd.String("api-key"),
		OutDir:   cmd.String("out"),
		N:        int(cmd.Int("n")),
		Warmup:   int(cmd.Int("warmup")),
		Discard:  int(cmd.Int("discard")),
	}, logger)

	logger.Info("Harness run started",
		zap.String("run_id", runner.RunID()),
		zap.String("base_url", cmd.String("base-url")),
	)

	smoke, err := runner.Smoke(ctx)
	if err != nil {
		return fmt.Errorf("smoke stage: %w", err)
	}
	logger.Info("Smoke finished", zap.Float64("ok_rate", smoke.OKRate))

	hardening, err := runner.Hardening(ctx)
	if err != nil {
		return fmt.Errorf("hardening stage: %w", err)
	}
	logger.Info("Hardening finished",
		zap.Int("cases", hardening.N),
		zap.Int("errors", hardening.Errors),
	)

	benchReport, err := runner.Benchmark(ctx)
	if err != nil {
		return fmt.Errorf("benchmark stage: %w", err)
	}
	logger.Info("Benchmark finished",
		zap.Int("n", benchReport.N),
		zap.Float64("p50_s", benchReport.P50),
		zap.Float64("p95_s", benchReport.P95),
		zap.Float64("p99_s", benchReport.P99),
	)

	gate, err := runner.Gate(bench.DefaultThresholds(), smoke, benchReport)
	if err != nil {
		return fmt.Errorf("gate stage: %w", err)
	}

	logger.Info("Gate evaluated", zap.Bool("pass", gate.Pass), zap.Any("checks", gate.Checks))
	fmt.Println("Artifacts written to:", cmd.String("out"))
	fmt.Println("Gate PASS:", gate.Pass)

	if !gate.Pass {
		return cli.Exit("gate failed", 2)
	}
	return nil
}
