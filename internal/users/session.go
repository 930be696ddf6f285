package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"exam-prep/internal/logging"
	"exam-prep/internal/store"
)

const currentUserKey = "current_user"

// Session tracks the signed-in user across runs through the store.
type Session struct {
	store  store.Store
	logger *zap.Logger
}

func NewSession(kv store.Store, logger *zap.Logger) *Session {
	return &Session{store: kv, logger: logging.OrNop(logger)}
}

// Restore returns the signed-in user, if any. A corrupt marker reads as
// signed out.
func (s *Session) Restore(ctx context.Context) (User, bool, error) {
	raw, err := s.store.Get(ctx, currentUserKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("load current user: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.logger.Warn("ignoring corrupt current user marker", zap.Error(err))
		return User{}, false, nil
	}
	return user, true, nil
}

func (s *Session) SignIn(ctx context.Context, user User) error {
	payload, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	if err := s.store.Set(ctx, currentUserKey, string(payload)); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	return nil
}

func (s *Session) SignOut(ctx context.Context) error {
	if err := s.store.Remove(ctx, currentUserKey); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}
