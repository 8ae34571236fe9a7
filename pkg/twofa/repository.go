package twofa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const TWO_FACTOR_TYPE_TOTP = "totp"

var ErrEnrollmentNotFound = errors.New("2FA enrollment not found")

// Enrollment is a second-factor record for an account
type Enrollment struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Type      string    `json:"type"`
	Secret    string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollmentRepository defines the interface for 2FA enrollment storage
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]Enrollment, error)
}

// RecordLookup is the direct enrollment-record check used when the primary
// status service cannot answer.
type RecordLookup interface {
	ActiveRecordExists(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const enrollmentTable = "checkout_second_factors"

// PostgresEnrollmentRepository implements EnrollmentRepository and RecordLookup using PostgreSQL
type PostgresEnrollmentRepository struct {
	db DBTX
}

// NewPostgresEnrollmentRepository creates a new PostgreSQL-based enrollment repository
func NewPostgresEnrollmentRepository(db DBTX) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{db: db}
}

func (r *PostgresEnrollmentRepository) Create(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO checkout_second_factors (id, account_id, factor_type, secret, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		enrollment.ID, enrollment.AccountID, enrollment.Type, enrollment.Secret, enrollment.Active)
	if err := row.Scan(&enrollment.CreatedAt); err != nil {
		return Enrollment{}, fmt.Errorf("failed to create 2FA enrollment: %w", err)
	}
	return enrollment, nil
}

func (r *PostgresEnrollmentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE checkout_second_factors SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update 2FA enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (r *PostgresEnrollmentRepository) FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]Enrollment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, factor_type, secret, active, created_at
		 FROM checkout_second_factors
		 WHERE account_id = $1 AND active
		 ORDER BY created_at`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query 2FA enrollments: %w", err)
	}
	defer rows.Close()

	res := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Secret, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan 2FA enrollment: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// ActiveRecordExists checks the enrollment table directly. A missing table
// means no enrollments rather than an error.
func (r *PostgresEnrollmentRepository) ActiveRecordExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var tableExists bool
	if err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, enrollmentTable).Scan(&tableExists); err != nil {
		return false, fmt.Errorf("failed to check 2FA table: %w", err)
	}
	if !tableExists {
		return false, nil
	}

	var one int
	err := r.db.QueryRow(ctx,
		`SELECT 1 FROM checkout_second_factors WHERE account_id = $1 AND active LIMIT 1`,
		accountID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up 2FA record: %w", err)
	}
	return true, nil
}
