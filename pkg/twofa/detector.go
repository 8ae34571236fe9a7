package twofa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// StatusService is the primary source of second-factor status
type StatusService interface {
	HasActive(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// Detector answers whether an account has an active second factor. The
// result is computed on every call and never cached.
type Detector struct {
	primary  StatusService
	fallback RecordLookup
}

// NewDetector creates a detector; either path may be nil
func NewDetector(primary StatusService, fallback RecordLookup) *Detector {
	return &Detector{
		primary:  primary,
		fallback: fallback,
	}
}

func (d *Detector) HasActiveSecondFactor(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var primaryErr error
	if d.primary != nil {
		active, err := d.primary.HasActive(ctx, accountID)
		if err == nil && active {
			return true, nil
		}
		if err != nil {
			slog.Warn("Primary 2FA status unavailable, using record lookup", "accountID", accountID, "error", err)
			primaryErr = err
		}
	}

	if d.fallback == nil {
		return false, primaryErr
	}

	exists, err := d.fallback.ActiveRecordExists(ctx, accountID)
	if err != nil {
		if primaryErr != nil {
			return false, fmt.Errorf("2FA status unavailable: %w", err)
		}
		slog.Error("2FA record lookup failed", "accountID", accountID, "error", err)
		return false, nil
	}
	return exists, nil
}
