package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// AccountRepository defines the lookups the identity provider needs
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByLogin(ctx context.Context, login string) (Account, error)
	Create(ctx context.Context, acct Account) (Account, error)
}

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresAccountRepository implements AccountRepository using PostgreSQL
type PostgresAccountRepository struct {
	db DBTX
}

// NewPostgresAccountRepository creates a new PostgreSQL-based account repository
func NewPostgresAccountRepository(db DBTX) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

const selectAccount = `SELECT id, login, email, password_hash, locked, created_at FROM checkout_accounts`

func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, selectAccount+` WHERE lower(email) = $1 AND deleted_at IS NULL LIMIT 1`, normalizeEmail(email))
	return scanAccount(row)
}

func (r *PostgresAccountRepository) FindByLogin(ctx context.Context, login string) (Account, error) {
	row := r.db.QueryRow(ctx, selectAccount+` WHERE login = $1 AND deleted_at IS NULL LIMIT 1`, login)
	return scanAccount(row)
}

func (r *PostgresAccountRepository) Create(ctx context.Context, acct Account) (Account, error) {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	acct.Email = normalizeEmail(acct.Email)
	row := r.db.QueryRow(ctx,
		`INSERT INTO checkout_accounts (id, login, email, password_hash, locked)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		acct.ID, acct.Login, acct.Email, acct.PasswordHash, acct.Locked)
	if err := row.Scan(&acct.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, fmt.Errorf("%w: %s", ErrAccountAlreadyExists, acct.Login)
		}
		return Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var acct Account
	err := row.Scan(&acct.ID, &acct.Login, &acct.Email, &acct.PasswordHash, &acct.Locked, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	return acct, nil
}
