package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/checkout-login/pkg/account"
	apperrors "github.com/tendant/checkout-login/pkg/errors"
	"github.com/tendant/checkout-login/pkg/loginflow"
)

const (
	msgSecurityCheckFailed = "Security check failed."
	msgEnterIdentifier     = "Please enter username or email."
	msgEnterCredentials    = "Please enter username/email and password."
	msgMissingCredentials  = "Missing credentials."
	msgUserNotFound        = "User not found"
	msgIncorrectPassword   = "Incorrect password"
	msgGenericFailure      = "An error occurred. Please try again."
)

// IdentityProvider resolves accounts, verifies passwords and signs accounts on
type IdentityProvider interface {
	ResolveAccount(ctx context.Context, identifier string) (account.Account, bool, error)
	VerifyPassword(ctx context.Context, acct account.Account, password string) (bool, error)
	EqualizeTiming(password string)
	SignOn(ctx context.Context, request loginflow.Request) loginflow.Result
}

type SecondFactorProvider interface {
	HasActiveSecondFactor(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// AntiForgery issues and validates the token embedded in the checkout page
type AntiForgery interface {
	Issue() (string, error)
	Validate(token string) error
}

type Service struct {
	identity      IdentityProvider
	secondFactors SecondFactorProvider
	tokens        AntiForgery
}

func NewService(identity IdentityProvider, secondFactors SecondFactorProvider, tokens AntiForgery) *Service {
	return &Service{
		identity:      identity,
		secondFactors: secondFactors,
		tokens:        tokens,
	}
}

// IdentifyUser reports whether identifier resolves to an account and, if so,
// whether the account has an active second factor. No password is checked.
func (s *Service) IdentifyUser(ctx context.Context, req IdentifyRequest) (result IdentifyResult) {
	defer recoverInternal("identify_user", func(e *apperrors.Error) {
		result = IdentifyResult{Msg: e.Message, Code: e.Code}
	})

	res, err := s.identifyUser(ctx, req)
	if err != nil {
		e := boundaryError("identify_user", err)
		return IdentifyResult{Msg: e.Message, Code: e.Code}
	}
	return res
}

func (s *Service) identifyUser(ctx context.Context, req IdentifyRequest) (IdentifyResult, error) {
	if err := s.checkToken(req.Token); err != nil {
		return IdentifyResult{}, err
	}

	identifier := account.SanitizeIdentifier(req.Identifier)
	if identifier == "" {
		return IdentifyResult{}, apperrors.ValidationFailed(msgEnterIdentifier)
	}

	acct, found, err := s.identity.ResolveAccount(ctx, identifier)
	if err != nil {
		return IdentifyResult{}, apperrors.InternalWrap(err, "failed to resolve account")
	}
	if !found {
		return IdentifyResult{Exists: false, Code: apperrors.ErrCodeNotFound}, nil
	}

	has2FA, err := s.secondFactors.HasActiveSecondFactor(ctx, acct.ID)
	if err != nil {
		return IdentifyResult{}, apperrors.InternalWrap(err, "failed to detect second factor")
	}
	return IdentifyResult{Exists: true, Has2FA: has2FA}, nil
}

// VerifyPassword checks the password for identifier. A correct password
// does not establish a session.
func (s *Service) VerifyPassword(ctx context.Context, req VerifyPasswordRequest) (result VerifyPasswordResult) {
	defer recoverInternal("verify_password", func(e *apperrors.Error) {
		result = VerifyPasswordResult{Msg: e.Message, Code: e.Code}
	})

	res, err := s.verifyPassword(ctx, req)
	if err != nil {
		e := boundaryError("verify_password", err)
		return VerifyPasswordResult{Msg: e.Message, Code: e.Code}
	}
	return res
}

func (s *Service) verifyPassword(ctx context.Context, req VerifyPasswordRequest) (VerifyPasswordResult, error) {
	if err := s.checkToken(req.Token); err != nil {
		return VerifyPasswordResult{}, err
	}

	identifier := account.SanitizeIdentifier(req.Identifier)
	if identifier == "" || req.Password == "" {
		return VerifyPasswordResult{}, apperrors.ValidationFailed(msgEnterCredentials)
	}

	acct, found, err := s.identity.ResolveAccount(ctx, identifier)
	if err != nil {
		return VerifyPasswordResult{}, apperrors.InternalWrap(err, "failed to resolve account")
	}
	if !found {
		s.identity.EqualizeTiming(req.Password)
		return VerifyPasswordResult{}, apperrors.New(apperrors.ErrCodeNotFound, msgUserNotFound)
	}

	ok, err := s.identity.VerifyPassword(ctx, acct, req.Password)
	if err != nil {
		return VerifyPasswordResult{}, apperrors.InternalWrap(err, "failed to verify password")
	}
	if !ok {
		return VerifyPasswordResult{}, apperrors.CredentialMismatch(msgIncorrectPassword)
	}

	has2FA, err := s.secondFactors.HasActiveSecondFactor(ctx, acct.ID)
	if err != nil {
		return VerifyPasswordResult{}, apperrors.InternalWrap(err, "failed to detect second factor")
	}
	return VerifyPasswordResult{OK: true, Has2FA: has2FA}, nil
}

// LoginWithSecondFactor signs on with identifier, password and the optional
// one-time code. The code is forwarded as given; its format is not checked here.
// On failure the identity provider's message is returned verbatim.
func (s *Service) LoginWithSecondFactor(ctx context.Context, req LoginRequest) (result LoginResult) {
	defer recoverInternal("login_with_2fa", func(e *apperrors.Error) {
		result = LoginResult{Msg: e.Message, Code: e.Code}
	})

	res, err := s.loginWithSecondFactor(ctx, req)
	if err != nil {
		e := boundaryError("login_with_2fa", err)
		return LoginResult{Msg: e.Message, Code: e.Code}
	}
	return res
}

func (s *Service) loginWithSecondFactor(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if err := s.checkToken(req.Token); err != nil {
		return LoginResult{}, err
	}

	identifier := account.SanitizeIdentifier(req.Identifier)
	if identifier == "" || req.Password == "" {
		return LoginResult{}, apperrors.ValidationFailed(msgMissingCredentials)
	}

	signOn := s.identity.SignOn(ctx, loginflow.Request{
		Login:    identifier,
		Password: req.Password,
		OTPCode:  req.OTPCode,
	})
	if signOn.ErrorResponse != nil {
		if signOn.ErrorResponse.IsInternal() {
			return LoginResult{}, signOn.ErrorResponse
		}
		return LoginResult{}, apperrors.CredentialMismatch(signOn.ErrorResponse.Message)
	}
	if !signOn.Success {
		return LoginResult{}, apperrors.Internal("sign-on finished without a session")
	}
	return LoginResult{OK: true, Session: signOn.Session}, nil
}

// IssueToken returns a fresh anti-forgery token for the checkout page
func (s *Service) IssueToken() (string, error) {
	return s.tokens.Issue()
}

func (s *Service) checkToken(token string) error {
	if err := s.tokens.Validate(token); err != nil {
		slog.Warn("Anti-forgery token rejected", "err", err)
		return apperrors.SecurityCheckFailed(msgSecurityCheckFailed)
	}
	return nil
}

// boundaryError keeps soft failures as they are and replaces anything else
// with a generic internal error after logging it.
func boundaryError(operation string, err error) *apperrors.Error {
	code := apperrors.GetCode(err)
	if code != apperrors.ErrCodeInternal {
		var appErr *apperrors.Error
		errors.As(err, &appErr)
		return appErr
	}
	slog.Error("Checkout login operation failed", "operation", operation, "code", code, "err", err)
	return apperrors.Internal(msgGenericFailure)
}

func recoverInternal(operation string, set func(e *apperrors.Error)) {
	if r := recover(); r != nil {
		set(boundaryError(operation, fmt.Errorf("panic: %v", r)))
	}
}
