package repositories

import (
	"context"
	"errors"

	"smartcontact/internal/models"
)

var (
	// ErrUserNotFound is returned by single-row lookups when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a write would break email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrPasswordRequired is returned when Update would insert a user without a password.
	ErrPasswordRequired = errors.New("password required to insert user")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
	FindByCity(ctx context.Context, city string) ([]models.User, error)
	FindByCountry(ctx context.Context, country string) ([]models.User, error)
	FindByStatus(ctx context.Context, status string) ([]models.User, error)
	FindByRoleAndStatus(ctx context.Context, role, status string) ([]models.User, error)
	SearchByNameContaining(ctx context.Context, substring string) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update stores the user keyed by ID, inserting it if the ID is unknown.
	// An empty Password keeps the stored hash. CreatedAt is never overwritten.
	Update(ctx context.Context, user *models.User) error
	// DeleteByID removes the user. Deleting an unknown ID is not an error.
	DeleteByID(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]models.User, error)
}
