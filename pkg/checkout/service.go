package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type PlaceOrderParams struct {
	BillingEmail  string
	CreateAccount bool
}

type Service struct {
	repo OrderRepository
}

func NewService(repo OrderRepository) *Service {
	return &Service{repo: repo}
}

// PlaceOrder records a guest order. CreateAccount only records the
// customer's intent; registration happens elsewhere.
func (s *Service) PlaceOrder(ctx context.Context, params PlaceOrderParams) (Order, error) {
	params.BillingEmail = strings.TrimSpace(params.BillingEmail)
	if params.BillingEmail == "" {
		return Order{}, fmt.Errorf("billing email is required")
	}

	var order Order
	copier.Copy(&order, &params)

	order, err := s.repo.Create(ctx, order)
	if err != nil {
		return Order{}, err
	}
	slog.Info("Order placed", "orderID", order.ID, "createAccount", order.CreateAccount)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}
