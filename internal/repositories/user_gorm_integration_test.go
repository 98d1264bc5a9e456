//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"smartcontact/internal/config"
	"smartcontact/internal/database"
	"smartcontact/internal/models"
	"smartcontact/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "smartcontact",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=test password=test dbname=smartcontact sslmode=disable", host, port.Port())
}

func TestGORMUserRepository_PostgresIntegration(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, &config.Config{DatabaseDriver: config.DriverPostgres, DatabaseDSN: startPostgres(t)})
	require.NoError(t, err)
	defer database.Close(db)
	repo := repositories.NewGORMUserRepository(db)

	users := seedUsers(t, repo)

	err = repo.Create(ctx, &models.User{Name: "Dup", Email: "ann@x.com", Password: "h"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	found, err := repo.SearchByNameContaining(ctx, "an")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Lee", "Joanna"}, names(found))

	ann := users[0]
	ann.Password = ""
	ann.City = "Nice"
	require.NoError(t, repo.Update(ctx, &ann))
	assert.Equal(t, "hash-ann", ann.Password)
	assert.WithinDuration(t, users[0].CreatedAt, ann.CreatedAt, time.Millisecond)

	require.NoError(t, repo.DeleteByID(ctx, ann.ID))
	require.NoError(t, repo.DeleteByID(ctx, ann.ID))
	_, err = repo.FindByID(ctx, ann.ID)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}
