package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// timingPassword is hashed once and verified against on unknown identifiers
const timingPassword = "checkout-login-timing-equalizer"

type Service struct {
	repo    AccountRepository
	hashers *HasherRegistry

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithHasherRegistry(hashers *HasherRegistry) Option {
	return func(s *Service) {
		s.hashers = hashers
	}
}

func NewService(repo AccountRepository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		hashers: NewHasherRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveAccount maps an identifier to an account. Identifiers that look like
// an email address are tried as email first and then as a login name.
// found is false with a nil error when nothing matches.
func (s *Service) ResolveAccount(ctx context.Context, identifier string) (Account, bool, error) {
	identifier = SanitizeIdentifier(identifier)
	if identifier == "" {
		return Account{}, false, nil
	}

	if LooksLikeEmail(identifier) {
		acct, err := s.repo.FindByEmail(ctx, identifier)
		if err == nil {
			return acct, true, nil
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return Account{}, false, fmt.Errorf("failed to find account by email: %w", err)
		}
	}

	acct, err := s.repo.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, false, nil
		}
		return Account{}, false, fmt.Errorf("failed to find account by login: %w", err)
	}
	return acct, true, nil
}

// VerifyPassword checks password against the account's stored hash
func (s *Service) VerifyPassword(ctx context.Context, acct Account, password string) (bool, error) {
	if password == "" || acct.PasswordHash == "" {
		return false, nil
	}
	hasher, err := s.hashers.HasherFor(acct.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("account %s: %w", acct.ID, err)
	}
	return hasher.Verify(password, acct.PasswordHash)
}

// EqualizeTiming performs a throwaway hash verification so that a lookup miss
// costs about as much as a password check.
func (s *Service) EqualizeTiming(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hashers.Current().Hash(timingPassword)
		if err != nil {
			slog.Error("Failed to prepare timing hash", "err", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" || password == "" {
		return
	}
	_, _ = s.hashers.Current().Verify(password, s.dummyHash)
}

type CreateAccountParams struct {
	Login    string
	Email    string
	Password string
	Locked   bool
}

// CreateAccount hashes the password with the current hasher and stores the account
func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	login := SanitizeIdentifier(params.Login)
	if login == "" {
		return Account{}, fmt.Errorf("login cannot be empty")
	}
	hash, err := s.hashers.Current().Hash(params.Password)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acct, err := s.repo.Create(ctx, Account{
		Login:        login,
		Email:        SanitizeIdentifier(params.Email),
		PasswordHash: hash,
		Locked:       params.Locked,
	})
	if err != nil {
		return Account{}, err
	}
	slog.Info("Account created", "id", acct.ID, "login", acct.Login)
	return acct, nil
}
