package loginflow

import (
	"context"

	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/session"
)

const (
	ErrorTypeUnknownAccount       = "unknown_account"
	ErrorTypeAccountLocked        = "account_locked"
	ErrorTypeIncorrectPassword    = "incorrect_password"
	ErrorTypeSecondFactorRequired = "second_factor_required"
	ErrorTypeInvalidCode          = "invalid_code"
	ErrorTypeStepExecution        = "step_execution_error"
)

// Request is a sign-on attempt. OTPCode is empty when no code was supplied.
type Request struct {
	Login    string
	Password string
	OTPCode  string
}

type Result struct {
	Success              bool
	RequiresSecondFactor bool
	Account              account.Account
	Session              session.Session
	ErrorResponse        *Error
}

// Error is a user-facing sign-on failure
type Error struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsInternal reports whether the failure came from an unexpected step error
// rather than a rejected credential.
func (e *Error) IsInternal() bool {
	return e.Type == ErrorTypeStepExecution
}

// LoginFlowService runs sign-on
type LoginFlowService struct {
	signOn *FlowExecutor
}

func NewLoginFlowService(services *ServiceDependencies) *LoginFlowService {
	return &LoginFlowService{
		signOn: NewSignOnFlow(services),
	}
}

// SignOn authenticates login, password and optional code and issues a session on success
func (s *LoginFlowService) SignOn(ctx context.Context, request Request) Result {
	return s.signOn.Execute(ctx, request)
}
