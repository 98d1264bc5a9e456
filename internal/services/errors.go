package services

import (
	"errors"
	"fmt"

	"smartcontact/internal/repositories"
)

// ErrDuplicateEmail is returned when saving a user whose email is taken.
var ErrDuplicateEmail = errors.New("email already exists")

// Password errors are caused by the request and map to 400.
var (
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordRequired = errors.New("password is required for a new user")
)

// UserNotFoundError reports a lookup by ID that matched no user.
type UserNotFoundError struct {
	ID uint
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user with ID %d not found", e.ID)
}

// Unwrap lets errors.Is match repositories.ErrUserNotFound.
func (e *UserNotFoundError) Unwrap() error {
	return repositories.ErrUserNotFound
}
