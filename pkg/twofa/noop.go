package twofa

import (
	"context"

	"github.com/google/uuid"
)

// NoOpService reports no second factor for every account and rejects every code.
// Use it when second-factor support is not configured.
type NoOpService struct{}

func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

func (n *NoOpService) HasActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return false, nil
}

func (n *NoOpService) ValidateCode(ctx context.Context, accountID uuid.UUID, passcode string) (bool, error) {
	return false, ErrEnrollmentNotFound
}
