// Package repository is the persistence layer.
//
// Services never write SQL. They depend on the interfaces declared here, and
// the SQLite implementations live next to them (sqlite_*.go). Every
// implementation takes a database.TxQuerier, so a repository can run on the
// pool or inside database.WithTx without change.
//
// Missing rows are reported as pkg.ErrNotFound and UNIQUE violations as
// pkg.ErrAlreadyExists, so callers can use errors.Is.
package repository

import (
	"context"
	"time"

	"github.com/adarshgogate/BloodDonorApp/models"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateLastLogin records a successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	Count(ctx context.Context) (int, error)
}
