// Package repository defines the data access layer.
//
// Services never write SQL; they talk to the repository interfaces declared
// here. That keeps the services testable with in-memory fakes and lets the
// storage engine change without touching business rules.
package repository

import (
	"context"

	"github.com/akinalp/rtctoken/models"
)

// UserRepository is the identity store.
type UserRepository interface {
	// Create inserts user. user.ID and user.CreatedAt must already be set.
	// Returns pkg.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail matches the email exactly as stored.
	// Returns pkg.ErrNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns every user, oldest first.
	List(ctx context.Context) ([]models.User, error)
}
