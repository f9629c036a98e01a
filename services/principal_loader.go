package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/repository"
)

// DefaultStoreTimeout bounds a principal read when none is configured.
const DefaultStoreTimeout = 3 * time.Second

// PrincipalLoader resolves usernames to principals straight from the user
// store. Nothing is cached: every call is a fresh read, so a disabled or
// deleted account takes effect on the next request.
type PrincipalLoader struct {
	users   repository.UserRepository
	timeout time.Duration
}

// NewPrincipalLoader returns a loader whose reads are cut off after timeout.
func NewPrincipalLoader(users repository.UserRepository, timeout time.Duration) *PrincipalLoader {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &PrincipalLoader{users: users, timeout: timeout}
}

// LoadByUsername returns the principal for username. An unknown username
// yields a PrincipalNotFound *TokenError; store errors, including the
// timeout, are returned wrapped.
func (l *PrincipalLoader) LoadByUsername(ctx context.Context, username string) (*models.Principal, error) {
	if username == "" {
		return nil, tokenError(KindPrincipalNotFound, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	user, err := l.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, tokenError(KindPrincipalNotFound, nil)
		}
		return nil, fmt.Errorf("failed to load principal %q: %w", username, err)
	}

	return user.Principal(), nil
}
