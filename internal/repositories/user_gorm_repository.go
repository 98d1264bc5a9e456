package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartcontact/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user. The database assigns the ID.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by primary key.
func (r *GORMUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByName retrieves a user whose name matches exactly.
func (r *GORMUserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	return r.first(ctx, "name = ?", name)
}

// FindByEmail retrieves a user whose email matches exactly.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GORMUserRepository) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	return r.find(ctx, "role = ?", role)
}

func (r *GORMUserRepository) FindByCity(ctx context.Context, city string) ([]models.User, error) {
	return r.find(ctx, "city = ?", city)
}

func (r *GORMUserRepository) FindByCountry(ctx context.Context, country string) ([]models.User, error) {
	return r.find(ctx, "country = ?", country)
}

func (r *GORMUserRepository) FindByStatus(ctx context.Context, status string) ([]models.User, error) {
	return r.find(ctx, "status = ?", status)
}

func (r *GORMUserRepository) FindByRoleAndStatus(ctx context.Context, role, status string) ([]models.User, error) {
	return r.find(ctx, "role = ? AND status = ?", role, status)
}

// SearchByNameContaining matches names containing substring, ignoring case.
// LIKE wildcards in substring are matched literally.
func (r *GORMUserRepository) SearchByNameContaining(ctx context.Context, substring string) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(substring)) + "%"
	return r.find(ctx, `LOWER(name) LIKE ? ESCAPE '\'`, pattern)
}

// ExistsByEmail reports whether any user has the given email.
func (r *GORMUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email %s: %w", email, err)
	}
	return count > 0, nil
}

// Update saves every column of user keyed by its ID, then reloads the row so
// the caller sees the stored timestamps. An empty password keeps the stored
// one; it is ErrPasswordRequired when no row has the ID yet.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Password == "" {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrPasswordRequired
			}
			tx = tx.Omit("password")
		}
		// Save falls back to an insert when no row has this ID.
		return tx.Save(user).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordRequired):
			return ErrPasswordRequired
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	if err := r.db.WithContext(ctx).First(user, "id = ?", user.ID).Error; err != nil {
		return fmt.Errorf("failed to reload user %d: %w", user.ID, err)
	}
	return nil
}

// DeleteByID hard-deletes a user. Zero affected rows is fine.
func (r *GORMUserRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

// FindAll retrieves all users ordered by ID.
func (r *GORMUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

func (r *GORMUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user where %s: %w", query, err)
	}
	return &user, nil
}

func (r *GORMUserRepository) find(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users where %s: %w", query, err)
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
