package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"exam-prep/internal/logging"
	"exam-prep/internal/store"
)

const anonymousHistoryKey = "user_history"

// HistoryKey returns the store key of a user's answer log.
func HistoryKey(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return anonymousHistoryKey
	}
	return "history_" + userID
}

// History is an append-only answer log per user, kept as one JSON array
// under HistoryKey.
type History struct {
	mu     sync.Mutex
	store  store.Store
	logger *zap.Logger
}

func NewHistory(kv store.Store, logger *zap.Logger) *History {
	return &History{store: kv, logger: logging.OrNop(logger)}
}

// Load never fails on missing or corrupt data; both read as an empty log.
func (h *History) Load(ctx context.Context, userID string) ([]HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx, HistoryKey(userID))
}

func (h *History) Append(ctx context.Context, userID string, entry HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := HistoryKey(userID)
	log, err := h.load(ctx, key)
	if err != nil {
		return err
	}
	log = append(log, entry)

	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("save history %s: %w", key, err)
	}
	return nil
}

func (h *History) Stats(ctx context.Context, userID string) (Stats, error) {
	log, err := h.Load(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(log), nil
}

func (h *History) Reset(ctx context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := HistoryKey(userID)
	if err := h.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("reset history %s: %w", key, err)
	}
	return nil
}

func (h *History) load(ctx context.Context, key string) ([]HistoryEntry, error) {
	raw, err := h.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("load history %s: %w", key, err)
	}

	var log []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		h.logger.Warn("discarding corrupt history", zap.String("key", key), zap.Error(err))
		return []HistoryEntry{}, nil
	}
	if log == nil {
		log = []HistoryEntry{}
	}
	return log, nil
}
