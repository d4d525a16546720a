package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookshop/internal/domain"
	tokenrepo "bookshop/internal/repository/token"
)

type tokenManager struct {
	repo tokenrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, userID int64, ttl time.Duration) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(ttl)
	for i := 0; i < 5; i++ {
		token := uuid.NewString()
		err := m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errors.New("token collision")
}

// Validate returns the owning user id for a live token. Expired tokens are
// removed on sight.
func (m *tokenManager) Validate(ctx context.Context, token string) (int64, bool) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, false
	}
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		return 0, false
	}
	if meta.Expired(m.now()) {
		_ = m.repo.Delete(ctx, token)
		return 0, false
	}
	return meta.UserID, true
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	err := m.repo.Delete(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
