package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"exam-prep/internal/app"
	"exam-prep/internal/config"
	"exam-prep/internal/httpapi"
	"exam-prep/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns the process exit code once every deferred close has run.
func run(args []string, stderr io.Writer) int {
	cfg := config.Load()

	flags := flag.NewFlagSet("quiz-service", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flags.StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath, "question bank file or http(s) URL")
	flags.StringVar(&cfg.UsersPath, "users", cfg.UsersPath, "user directory file")
	flags.StringVar(&cfg.StoreKind, "store", cfg.StoreKind, "store backend: sqlite, bolt or memory")
	flags.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "store file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return 1
	}
	defer runtime.Close()

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Options{
			Questions: runtime.Questions,
			History:   runtime.History,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("quiz-service listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", zap.Error(err))
		return 1
	}
	logger.Info("quiz-service stopped")
	return 0
}
