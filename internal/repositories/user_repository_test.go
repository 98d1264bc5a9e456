package repositories_test

import (
	"context"
	"testing"
	"time"

	"smartcontact/internal/config"
	"smartcontact/internal/database"
	"smartcontact/internal/models"
	"smartcontact/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteRepository returns a GORM repository on a private in-memory database.
func newSQLiteRepository(t *testing.T) repositories.UserRepository {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    "file:" + uuid.New().String() + "?mode=memory&cache=shared",
	}
	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return repositories.NewGORMUserRepository(db)
}

func newMemoryRepository(t *testing.T) repositories.UserRepository {
	return repositories.NewMemoryUserRepository()
}

// Both stores must honour the same contract.
var repositoryFactories = map[string]func(t *testing.T) repositories.UserRepository{
	"gorm-sqlite": newSQLiteRepository,
	"memory":      newMemoryRepository,
}

func seedUsers(t *testing.T, repo repositories.UserRepository) []models.User {
	t.Helper()
	users := []models.User{
		{Name: "Ann Lee", Email: "ann@x.com", Password: "hash-ann", Role: "admin", City: "Paris", Country: "FR", Status: "ACTIVE"},
		{Name: "Bob Stone", Email: "bob@x.com", Password: "hash-bob", Role: "user", City: "Lyon", Country: "FR", Status: "ACTIVE"},
		{Name: "Joanna", Email: "jo@x.com", Password: "hash-jo", Role: "user", City: "Paris", Country: "US", Status: "BLOCKED"},
	}
	for i := range users {
		require.NoError(t, repo.Create(context.Background(), &users[i]))
	}
	return users
}

func names(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}
	return out
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			users := seedUsers(t, repo)

			assert.NotZero(t, users[0].ID)
			assert.NotEqual(t, users[0].ID, users[1].ID)
			assert.False(t, users[0].CreatedAt.IsZero())
			assert.False(t, users[0].UpdatedAt.IsZero())

			byID, err := repo.FindByID(ctx, users[1].ID)
			require.NoError(t, err)
			assert.Equal(t, "bob@x.com", byID.Email)

			byName, err := repo.FindByName(ctx, "Joanna")
			require.NoError(t, err)
			assert.Equal(t, users[2].ID, byName.ID)

			byEmail, err := repo.FindByEmail(ctx, "ann@x.com")
			require.NoError(t, err)
			assert.Equal(t, "Ann Lee", byEmail.Name)

			_, err = repo.FindByID(ctx, 999)
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
			_, err = repo.FindByName(ctx, "ann lee")
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
			_, err = repo.FindByEmail(ctx, "nobody@x.com")
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		})
	}
}

func TestUserRepository_ListQueries(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			seedUsers(t, repo)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Ann Lee", "Bob Stone", "Joanna"}, names(all))

			byRole, err := repo.FindByRole(ctx, "user")
			require.NoError(t, err)
			assert.Equal(t, []string{"Bob Stone", "Joanna"}, names(byRole))

			byCity, err := repo.FindByCity(ctx, "Paris")
			require.NoError(t, err)
			assert.Equal(t, []string{"Ann Lee", "Joanna"}, names(byCity))

			byCountry, err := repo.FindByCountry(ctx, "FR")
			require.NoError(t, err)
			assert.Equal(t, []string{"Ann Lee", "Bob Stone"}, names(byCountry))

			byStatus, err := repo.FindByStatus(ctx, "BLOCKED")
			require.NoError(t, err)
			assert.Equal(t, []string{"Joanna"}, names(byStatus))

			byRoleStatus, err := repo.FindByRoleAndStatus(ctx, "user", "ACTIVE")
			require.NoError(t, err)
			assert.Equal(t, []string{"Bob Stone"}, names(byRoleStatus))

			none, err := repo.FindByCity(ctx, "Berlin")
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestUserRepository_SearchByNameContaining(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			seedUsers(t, repo)

			found, err := repo.SearchByNameContaining(ctx, "AN")
			require.NoError(t, err)
			assert.Equal(t, []string{"Ann Lee", "Joanna"}, names(found))

			found, err = repo.SearchByNameContaining(ctx, "%")
			require.NoError(t, err)
			assert.Empty(t, found)
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			seedUsers(t, repo)

			exists, err := repo.ExistsByEmail(ctx, "bob@x.com")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.ExistsByEmail(ctx, "carl@x.com")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			users := seedUsers(t, repo)

			err := repo.Create(ctx, &models.User{Name: "Ann Again", Email: "ann@x.com", Password: "h"})
			assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

			bob := users[1]
			bob.Email = "ann@x.com"
			err = repo.Update(ctx, &bob)
			assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			users := seedUsers(t, repo)
			original, err := repo.FindByID(ctx, users[0].ID)
			require.NoError(t, err)

			time.Sleep(10 * time.Millisecond)
			changed := models.User{
				ID:        original.ID,
				Name:      "Ann Marie",
				Email:     original.Email,
				City:      "Nice",
				Status:    "ACTIVE",
				CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			require.NoError(t, repo.Update(ctx, &changed))

			stored, err := repo.FindByID(ctx, original.ID)
			require.NoError(t, err)
			assert.Equal(t, "Ann Marie", stored.Name)
			assert.Equal(t, "Nice", stored.City)
			assert.Equal(t, "", stored.Role)
			assert.Equal(t, "hash-ann", stored.Password, "empty password keeps the stored hash")
			assert.True(t, stored.CreatedAt.Equal(original.CreatedAt), "created_at is immutable")
			assert.False(t, stored.UpdatedAt.Before(original.UpdatedAt))
			assert.Equal(t, stored.CreatedAt.Unix(), changed.CreatedAt.Unix(), "update reloads stored timestamps")

			changed.Password = "new-hash"
			require.NoError(t, repo.Update(ctx, &changed))
			stored, err = repo.FindByID(ctx, original.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", stored.Password)
		})
	}
}

func TestUserRepository_UpdateUnknownIDInserts(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			seedUsers(t, repo)

			user := models.User{ID: 42, Name: "Zed", Email: "zed@x.com", Password: "hash-zed"}
			require.NoError(t, repo.Update(ctx, &user))

			stored, err := repo.FindByID(ctx, 42)
			require.NoError(t, err)
			assert.Equal(t, "Zed", stored.Name)
			assert.False(t, stored.CreatedAt.IsZero())

			next := models.User{Name: "After", Email: "after@x.com", Password: "h"}
			require.NoError(t, repo.Create(ctx, &next))
			assert.Greater(t, next.ID, uint(42))
		})
	}
}

func TestUserRepository_UpdateUnknownIDWithoutPassword(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			seedUsers(t, repo)

			user := models.User{ID: 42, Name: "Zed", Email: "zed@x.com"}
			assert.ErrorIs(t, repo.Update(ctx, &user), repositories.ErrPasswordRequired)

			_, err := repo.FindByID(ctx, 42)
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
			exists, err := repo.ExistsByEmail(ctx, "zed@x.com")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestUserRepository_DeleteByIDIsIdempotent(t *testing.T) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)
			users := seedUsers(t, repo)

			require.NoError(t, repo.DeleteByID(ctx, users[0].ID))
			afterFirst, err := repo.FindAll(ctx)
			require.NoError(t, err)

			require.NoError(t, repo.DeleteByID(ctx, users[0].ID))
			afterSecond, err := repo.FindAll(ctx)
			require.NoError(t, err)

			assert.Equal(t, names(afterFirst), names(afterSecond))
			assert.Len(t, afterSecond, 2)
			_, err = repo.FindByID(ctx, users[0].ID)
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		})
	}
}
