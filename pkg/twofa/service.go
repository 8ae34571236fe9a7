package twofa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	TOTP_ISSUER = "checkout-login"
	SKEW        = 1
	PERIOD      = 30
)

// TotpOptions controls code generation and validation
type TotpOptions struct {
	Issuer string
	Period uint
	Skew   uint
}

func DefaultTotpOptions() TotpOptions {
	return TotpOptions{
		Issuer: TOTP_ISSUER,
		Period: PERIOD,
		Skew:   SKEW,
	}
}

func (o TotpOptions) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.Period,
		Skew:      o.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Service is the primary second-factor status service and TOTP validator
type Service struct {
	repo EnrollmentRepository
	opts TotpOptions
	now  func() time.Time
}

type Option func(*Service)

func WithTotpOptions(opts TotpOptions) Option {
	return func(s *Service) {
		s.opts = opts
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo EnrollmentRepository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		opts: DefaultTotpOptions(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasActive reports whether the account has at least one active enrollment
func (s *Service) HasActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	active, err := s.repo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to find active 2FA: %w", err)
	}
	return len(active) > 0, nil
}

// Enroll generates a TOTP secret for the account and stores it as active
func (s *Service) Enroll(ctx context.Context, accountID uuid.UUID, accountName string) (Enrollment, error) {
	secret, err := GenerateTotpSecret(s.opts.Issuer, accountName)
	if err != nil {
		return Enrollment{}, err
	}
	return s.repo.Create(ctx, Enrollment{
		AccountID: accountID,
		Type:      TWO_FACTOR_TYPE_TOTP,
		Secret:    secret,
		Active:    true,
	})
}

// Deactivate disables an enrollment without deleting it
func (s *Service) Deactivate(ctx context.Context, enrollmentID uuid.UUID) error {
	return s.repo.SetActive(ctx, enrollmentID, false)
}

// ValidateCode checks passcode against every active TOTP enrollment of the account
func (s *Service) ValidateCode(ctx context.Context, accountID uuid.UUID, passcode string) (bool, error) {
	active, err := s.repo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to find active 2FA: %w", err)
	}
	if len(active) == 0 {
		slog.Warn("No active 2FA enrollment for account", "accountID", accountID)
		return false, ErrEnrollmentNotFound
	}

	for _, e := range active {
		if e.Type != TWO_FACTOR_TYPE_TOTP {
			continue
		}
		valid, err := totp.ValidateCustom(passcode, e.Secret, s.now().UTC(), s.opts.validateOpts())
		if err != nil {
			// malformed passcode, treated as a mismatch
			slog.Debug("Failed to validate totp passcode", "accountID", accountID, "error", err)
			continue
		}
		if valid {
			return true, nil
		}
	}
	return false, nil
}

// GenerateCode returns the current code for a secret
func (s *Service) GenerateCode(secret string) (string, error) {
	return totp.GenerateCodeCustom(secret, s.now().UTC(), s.opts.validateOpts())
}

func GenerateTotpSecret(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "accountName", accountName, "issuer", issuer, "error", err)
		return "", err
	}
	return key.Secret(), nil
}
