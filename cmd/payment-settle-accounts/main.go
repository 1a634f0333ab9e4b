// Command payment-settle-accounts settles a CSV stream of payment events and
// prints the final per-client account summaries to stdout.
//
// Usage:
//
//	payment-settle-accounts <transactions.csv>
//
// Configuration comes from the environment (a .env file is honored): ENV
// selects the logger profile (default local) and LOG_LEVEL the verbosity
// (default error). Logs go to stderr; stdout carries only the result CSV.
// The process exits non-zero when the run halts on a fatal error, printing
// no summaries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	zapadapter "github.com/jproyo/payment-settle-accounts/internal/zap"
	"github.com/jproyo/payment-settle-accounts/log"
	"github.com/jproyo/payment-settle-accounts/pipeline"
)

type config struct {
	inputPath   string
	environment zapadapter.Environment
	logLevel    string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "payment-settle-accounts: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewCSVPipeline(cfg.inputPath, out, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	start := time.Now()

	if err := p.Run(ctx); err != nil {
		logger.Log(ctx, log.LevelError, "run halted", log.Err(err))
		return err
	}

	logger.Log(ctx, log.LevelDebug, "run complete", log.String("elapsed", time.Since(start).String()))

	return nil
}

func parseConfig(args []string) (config, error) {
	flags := flag.NewFlagSet("payment-settle-accounts", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: payment-settle-accounts <transactions.csv>")
	}

	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return config{}, errors.New("expected exactly one argument: the input csv path")
	}

	environment := os.Getenv("ENV")
	if environment == "" {
		environment = string(zapadapter.EnvironmentLocal)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = log.LevelError.String()
	}

	return config{
		inputPath:   flags.Arg(0),
		environment: zapadapter.Environment(environment),
		logLevel:    level,
	}, nil
}

func newLogger(cfg config) (log.Logger, error) {
	logger, err := zapadapter.New(zapadapter.Config{
		Environment: cfg.environment,
		Level:       cfg.logLevel,
	})
	if err != nil {
		return nil, err
	}

	return logger.With(log.String("run_id", uuid.NewString())), nil
}
