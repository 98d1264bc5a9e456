package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartcontact/internal/models"
	"smartcontact/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService implements user management on top of a UserRepository.
// It keeps no state between calls.
type UserService struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	publisher EventPublisher // optional
	logger    *zap.Logger
}

// NewUserService creates a new UserService. publisher may be nil, in which
// case no events are published.
func NewUserService(repo repositories.UserRepository, hasher PasswordHasher, publisher EventPublisher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		repo:      repo,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

// Save registers a new user. The ID and timestamps in the payload are
// ignored, the password is hashed and an empty status becomes ACTIVE.
func (s *UserService) Save(ctx context.Context, user *models.User) (*models.User, error) {
	s.logger.Info("saving user", zap.String("email", user.Email))

	exists, err := s.IsEmailExists(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	user.ID = 0
	user.CreatedAt = time.Time{}
	user.UpdatedAt = time.Time{}
	if user.Status == "" {
		user.Status = models.DefaultStatus
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// lost the race against a concurrent save
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.publish(EventUserCreated, user)
	return user, nil
}

// FetchAll returns every user.
func (s *UserService) FetchAll(ctx context.Context) ([]models.User, error) {
	s.logger.Debug("fetching all users")
	return s.repo.FindAll(ctx)
}

// FetchByID returns the user with the given ID or a *UserNotFoundError.
func (s *UserService) FetchByID(ctx context.Context, id uint) (*models.User, error) {
	s.logger.Debug("fetching user", zap.Uint("id", id))
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, &UserNotFoundError{ID: id}
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the user. Deleting an unknown ID succeeds.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("deleting user", zap.Uint("id", id))
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(EventUserDeleted, &models.User{ID: id})
	return nil
}

// Update stores user under id, overriding any ID in the payload. A plaintext
// password is hashed; a value that already looks hashed is kept as is so a
// record that was fetched and re-submitted is not hashed twice. An empty
// password keeps the stored one, and is ErrPasswordRequired when id is not
// stored yet.
func (s *UserService) Update(ctx context.Context, id uint, user *models.User) (*models.User, error) {
	s.logger.Info("updating user", zap.Uint("id", id))
	user.ID = id

	if user.Password != "" && !s.hasher.IsHashed(user.Password) {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		case errors.Is(err, repositories.ErrPasswordRequired):
			return nil, ErrPasswordRequired
		}
		return nil, err
	}

	s.publish(EventUserUpdated, user)
	return user, nil
}

// FindByName returns the user with exactly this name. The boolean is false
// when there is none.
func (s *UserService) FindByName(ctx context.Context, name string) (*models.User, bool, error) {
	s.logger.Debug("fetching user by name", zap.String("name", name))
	return found(s.repo.FindByName(ctx, name))
}

// FindByEmail returns the user with exactly this email. The boolean is false
// when there is none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	s.logger.Debug("fetching user by email", zap.String("email", email))
	return found(s.repo.FindByEmail(ctx, email))
}

// SearchByName returns users whose name contains name, ignoring case.
func (s *UserService) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	s.logger.Debug("searching users by name", zap.String("name", name))
	return s.repo.SearchByNameContaining(ctx, name)
}

func (s *UserService) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	s.logger.Debug("fetching users by role", zap.String("role", role))
	return s.repo.FindByRole(ctx, role)
}

func (s *UserService) FindByCity(ctx context.Context, city string) ([]models.User, error) {
	s.logger.Debug("fetching users by city", zap.String("city", city))
	return s.repo.FindByCity(ctx, city)
}

func (s *UserService) FindByCountry(ctx context.Context, country string) ([]models.User, error) {
	s.logger.Debug("fetching users by country", zap.String("country", country))
	return s.repo.FindByCountry(ctx, country)
}

func (s *UserService) FindByStatus(ctx context.Context, status string) ([]models.User, error) {
	s.logger.Debug("fetching users by status", zap.String("status", status))
	return s.repo.FindByStatus(ctx, status)
}

func (s *UserService) FindByRoleAndStatus(ctx context.Context, role, status string) ([]models.User, error) {
	s.logger.Debug("fetching users by role and status", zap.String("role", role), zap.String("status", status))
	return s.repo.FindByRoleAndStatus(ctx, role, status)
}

// VerifyLogin reports whether password matches the stored hash for email.
// An unknown email and a wrong password both yield false.
func (s *UserService) VerifyLogin(ctx context.Context, email, password string) (bool, error) {
	s.logger.Info("verifying login", zap.String("email", email))
	user, ok, err := s.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return s.hasher.Verify(password, user.Password), nil
}

// IsEmailExists reports whether a user with this email is stored.
func (s *UserService) IsEmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// publish sends a lifecycle event. Failures are logged and never returned.
func (s *UserService) publish(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	event := UserEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal user event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.PublishUserEvent(eventType, body); err != nil {
		s.logger.Warn("failed to publish user event",
			zap.String("type", eventType), zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func found(user *models.User, err error) (*models.User, bool, error) {
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}
