package loginflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/checkout-login/pkg/twofa"
)

// AccountResolutionStep resolves the identifier to an account
type AccountResolutionStep struct{}

func NewAccountResolutionStep() *AccountResolutionStep {
	return &AccountResolutionStep{}
}

func (s *AccountResolutionStep) Name() string {
	return "account_resolution"
}

func (s *AccountResolutionStep) Order() int {
	return OrderAccountResolution
}

func (s *AccountResolutionStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	return false
}

func (s *AccountResolutionStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	accounts := flowContext.Services.Accounts
	acct, found, err := accounts.ResolveAccount(ctx, flowContext.Request.Login)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if !found {
		accounts.EqualizeTiming(flowContext.Request.Password)
		return &StepResult{
			Error: &Error{
				Type:    ErrorTypeUnknownAccount,
				Message: "Unknown username or email address.",
			},
		}, nil
	}

	flowContext.Account = acct
	flowContext.Result.Account = acct
	return &StepResult{Continue: true}, nil
}

// AccountStatusStep rejects locked accounts
type AccountStatusStep struct{}

func NewAccountStatusStep() *AccountStatusStep {
	return &AccountStatusStep{}
}

func (s *AccountStatusStep) Name() string {
	return "account_status"
}

func (s *AccountStatusStep) Order() int {
	return OrderAccountStatus
}

func (s *AccountStatusStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	return false
}

func (s *AccountStatusStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	if flowContext.Account.Locked {
		slog.Warn("Sign-on attempt for locked account", "accountID", flowContext.Account.ID)
		return &StepResult{
			Error: &Error{
				Type:    ErrorTypeAccountLocked,
				Message: "This account is locked.",
			},
		}, nil
	}
	return &StepResult{Continue: true}, nil
}

// CredentialCheckStep verifies the password against the stored hash
type CredentialCheckStep struct{}

func NewCredentialCheckStep() *CredentialCheckStep {
	return &CredentialCheckStep{}
}

func (s *CredentialCheckStep) Name() string {
	return "credential_check"
}

func (s *CredentialCheckStep) Order() int {
	return OrderCredentialCheck
}

func (s *CredentialCheckStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	return false
}

func (s *CredentialCheckStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	ok, err := flowContext.Services.Accounts.VerifyPassword(ctx, flowContext.Account, flowContext.Request.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return &StepResult{
			Error: &Error{
				Type:    ErrorTypeIncorrectPassword,
				Message: fmt.Sprintf("The password you entered for %s is incorrect.", flowContext.Request.Login),
			},
		}, nil
	}
	return &StepResult{Continue: true}, nil
}

// SecondFactorStep enforces a valid one-time code when the account has an active second factor
type SecondFactorStep struct{}

func NewSecondFactorStep() *SecondFactorStep {
	return &SecondFactorStep{}
}

func (s *SecondFactorStep) Name() string {
	return "second_factor"
}

func (s *SecondFactorStep) Order() int {
	return OrderSecondFactor
}

func (s *SecondFactorStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	return flowContext.Services.SecondFactors == nil
}

func (s *SecondFactorStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	accountID := flowContext.Account.ID
	active, err := flowContext.Services.SecondFactors.HasActiveSecondFactor(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("detect second factor: %w", err)
	}
	flowContext.Result.RequiresSecondFactor = active
	if !active {
		return &StepResult{Continue: true}, nil
	}

	code := flowContext.Request.OTPCode
	if code == "" {
		return &StepResult{
			Error: &Error{
				Type:    ErrorTypeSecondFactorRequired,
				Message: "A two-factor code is required.",
			},
		}, nil
	}
	if flowContext.Services.Codes == nil {
		return nil, fmt.Errorf("no code validator configured")
	}

	valid, err := flowContext.Services.Codes.ValidateCode(ctx, accountID, code)
	if err != nil && !errors.Is(err, twofa.ErrEnrollmentNotFound) {
		return nil, fmt.Errorf("validate code: %w", err)
	}
	if !valid {
		slog.Info("Invalid second factor code", "accountID", accountID)
		return &StepResult{
			Error: &Error{
				Type:    ErrorTypeInvalidCode,
				Message: "Invalid code",
			},
		}, nil
	}
	return &StepResult{Continue: true}, nil
}

// SessionIssuanceStep establishes the session for the authenticated account
type SessionIssuanceStep struct{}

func NewSessionIssuanceStep() *SessionIssuanceStep {
	return &SessionIssuanceStep{}
}

func (s *SessionIssuanceStep) Name() string {
	return "session_issuance"
}

func (s *SessionIssuanceStep) Order() int {
	return OrderSessionIssuance
}

func (s *SessionIssuanceStep) ShouldSkip(ctx context.Context, flowContext *FlowContext) bool {
	return false
}

func (s *SessionIssuanceStep) Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error) {
	sess, err := flowContext.Services.Sessions.Issue(flowContext.Account)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	flowContext.Result.Session = sess
	flowContext.Result.Success = true
	slog.Info("Sign-on succeeded", "accountID", flowContext.Account.ID)
	return &StepResult{Continue: true}, nil
}
