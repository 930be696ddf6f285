package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"exam-prep/internal/config"
	"exam-prep/internal/dataset"
	"exam-prep/internal/logging"
	"exam-prep/internal/quiz"
	"exam-prep/internal/store"
	"exam-prep/internal/users"
)

const datasetFetchTimeout = 30 * time.Second

// Runtime holds the long-lived collaborators shared by the CLI and the
// HTTP service.
type Runtime struct {
	Questions []dataset.RawQuestion
	Store     store.Store
	History   *quiz.History
	Directory *users.Directory
	Accounts  *users.Session
	Logger    *zap.Logger
}

func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Runtime, error) {
	logger = logging.OrNop(logger)

	fetchCtx, cancel := context.WithTimeout(ctx, datasetFetchTimeout)
	defer cancel()

	client := dataset.NewClient(&http.Client{Timeout: datasetFetchTimeout})
	questions, err := client.Load(fetchCtx, cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.DatasetPath, err)
	}
	logger.Info("dataset loaded", zap.String("source", cfg.DatasetPath), zap.Int("questions", len(questions)))

	directory, err := users.LoadDirectory(cfg.UsersPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Warn("user directory not found, login disabled", zap.String("path", cfg.UsersPath))
		directory = users.NewDirectory(nil)
	}

	kv, err := store.Open(cfg.StoreKind, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreKind, err)
	}
	logger.Info("store opened", zap.String("kind", cfg.StoreKind), zap.String("path", cfg.StorePath))

	return &Runtime{
		Questions: questions,
		Store:     kv,
		History:   quiz.NewHistory(kv, logger),
		Directory: directory,
		Accounts:  users.NewSession(kv, logger),
		Logger:    logger,
	}, nil
}

func (r *Runtime) Close() error {
	return r.Store.Close()
}
