package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Order struct {
	ID            uuid.UUID `json:"id"`
	BillingEmail  string    `json:"billing_email"`
	CreateAccount bool      `json:"create_account"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderRepository interface {
	Create(ctx context.Context, order Order) (Order, error)
	List(ctx context.Context) ([]Order, error)
}

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PostgresOrderRepository struct {
	db DBTX
}

func NewPostgresOrderRepository(db DBTX) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order Order) (Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO checkout_orders (id, billing_email, create_account) VALUES ($1, $2, $3) RETURNING created_at`,
		order.ID, order.BillingEmail, order.CreateAccount,
	).Scan(&order.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return order, nil
}

func (r *PostgresOrderRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, billing_email, create_account, created_at FROM checkout_orders ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Order, error) {
		var o Order
		err := row.Scan(&o.ID, &o.BillingEmail, &o.CreateAccount, &o.CreatedAt)
		return o, err
	})
}

type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []Order
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{}
}

func (r *InMemoryOrderRepository) Create(ctx context.Context, order Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	r.orders = append(r.orders, order)
	return order, nil
}

func (r *InMemoryOrderRepository) List(ctx context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, len(r.orders))
	copy(orders, r.orders)
	return orders, nil
}
