package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"exam-prep/internal/app"
	"exam-prep/internal/cli"
	"exam-prep/internal/config"
	"exam-prep/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code once every deferred close has run.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Load()

	flags := flag.NewFlagSet("quiz-cli", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "question bank file or http(s) URL")
	flags.StringVar(&cfg.UsersPath, "users", cfg.UsersPath, "user directory file")
	flags.StringVar(&cfg.StoreKind, "store", cfg.StoreKind, "store backend: sqlite, bolt or memory")
	flags.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "store file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flags.IntVar(&cfg.MaxInvalidAnswers, "max-invalid", cfg.MaxInvalidAnswers, "invalid answers allowed per question")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runtime, err := app.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer runtime.Close()

	err = cli.Run(ctx, stdin, stdout, cli.Config{
		Questions:         runtime.Questions,
		History:           runtime.History,
		Directory:         runtime.Directory,
		Accounts:          runtime.Accounts,
		MaxInvalidAnswers: cfg.MaxInvalidAnswers,
		Logger:            logger,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
