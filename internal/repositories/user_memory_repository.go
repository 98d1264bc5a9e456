package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smartcontact/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It keeps the same uniqueness and timestamp rules as the SQL store.
type MemoryUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryUserRepository creates a new, empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
		now:    time.Now,
	}
}

// Create adds a new user with the next free ID.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(user.Email, 0) {
		return ErrDuplicateEmail
	}

	now := r.now()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByName(_ context.Context, name string) (*models.User, error) {
	return r.first(func(u models.User) bool { return u.Name == name })
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.first(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByRole(_ context.Context, role string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Role == role }), nil
}

func (r *MemoryUserRepository) FindByCity(_ context.Context, city string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.City == city }), nil
}

func (r *MemoryUserRepository) FindByCountry(_ context.Context, country string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Country == country }), nil
}

func (r *MemoryUserRepository) FindByStatus(_ context.Context, status string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Status == status }), nil
}

func (r *MemoryUserRepository) FindByRoleAndStatus(_ context.Context, role, status string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Role == role && u.Status == status }), nil
}

func (r *MemoryUserRepository) SearchByNameContaining(_ context.Context, substring string) ([]models.User, error) {
	needle := strings.ToLower(substring)
	return r.filter(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Name), needle)
	}), nil
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTakenLocked(email, 0), nil
}

// Update replaces the stored user, or inserts it under its ID if absent.
// Inserting requires a password.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok && user.Password == "" {
		return ErrPasswordRequired
	}
	if r.emailTakenLocked(user.Email, user.ID) {
		return ErrDuplicateEmail
	}

	now := r.now()
	if ok {
		user.CreatedAt = existing.CreatedAt
		if user.Password == "" {
			user.Password = existing.Password
		}
		if now.Before(existing.UpdatedAt) {
			now = existing.UpdatedAt
		}
	} else {
		user.CreatedAt = now
		if user.ID >= r.nextID {
			r.nextID = user.ID + 1
		}
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// DeleteByID removes a user. Unknown IDs are ignored.
func (r *MemoryUserRepository) DeleteByID(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) FindAll(_ context.Context) ([]models.User, error) {
	return r.filter(func(models.User) bool { return true }), nil
}

func (r *MemoryUserRepository) emailTakenLocked(email string, exceptID uint) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepository) first(match func(models.User) bool) (*models.User, error) {
	users := r.filter(match)
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

// filter returns matching users sorted by ID.
func (r *MemoryUserRepository) filter(match func(models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if match(u) {
			userList = append(userList, u)
		}
	}
	sort.Slice(userList, func(i, j int) bool { return userList[i].ID < userList[j].ID })
	return userList
}
