package twofa

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := runPostgres(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func runPostgres(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("..", "..", "migrations", "checkout_login.sql")),
		postgres.WithDatabase("checkout_db"),
		postgres.WithUsername("checkout"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
}

func TestPostgresEnrollmentRepository(t *testing.T) {
	pool := setupTestDatabase(t)
	ctx := context.Background()
	repo := NewPostgresEnrollmentRepository(pool)

	accountID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO checkout_accounts (id, login, email, password_hash) VALUES ($1, 'bob', 'bob@example.com', 'h')`,
		accountID)
	require.NoError(t, err)

	exists, err := repo.ActiveRecordExists(ctx, accountID)
	require.NoError(t, err)
	assert.False(t, exists)

	e, err := repo.Create(ctx, Enrollment{AccountID: accountID, Type: TWO_FACTOR_TYPE_TOTP, Secret: "JBSWY3DPEHPK3PXP", Active: true})
	require.NoError(t, err)

	active, err := repo.FindActiveByAccountID(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, e.ID, active[0].ID)

	exists, err = repo.ActiveRecordExists(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.SetActive(ctx, e.ID, false))
	exists, err = repo.ActiveRecordExists(ctx, accountID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repo.SetActive(ctx, uuid.New(), true), ErrEnrollmentNotFound)
}
