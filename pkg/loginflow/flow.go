package loginflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/session"
)

// LoginFlowStep represents a single step in the sign-on flow
type LoginFlowStep interface {
	// Name returns the unique name of this step
	Name() string

	// Order returns the execution order (lower numbers execute first)
	Order() int

	// Execute performs the step's logic
	Execute(ctx context.Context, flowContext *FlowContext) (*StepResult, error)

	// ShouldSkip determines if this step should be skipped based on current context
	ShouldSkip(ctx context.Context, flowContext *FlowContext) bool
}

// FlowContext carries state between steps
type FlowContext struct {
	Request Request

	Result  *Result
	Account account.Account

	Services *ServiceDependencies
}

// StepResult represents the result of executing a step
type StepResult struct {
	// Continue indicates whether the flow should continue to the next step
	Continue bool

	// Error is a user-facing failure that stops the flow
	Error *Error
}

// AccountService is the identity side of sign-on
type AccountService interface {
	ResolveAccount(ctx context.Context, identifier string) (account.Account, bool, error)
	VerifyPassword(ctx context.Context, acct account.Account, password string) (bool, error)
	EqualizeTiming(password string)
}

// SecondFactorDetector reports whether an account has an active second factor
type SecondFactorDetector interface {
	HasActiveSecondFactor(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// CodeValidator validates a one-time code for an account
type CodeValidator interface {
	ValidateCode(ctx context.Context, accountID uuid.UUID, passcode string) (bool, error)
}

type SessionIssuer interface {
	Issue(acct account.Account) (session.Session, error)
}

// ServiceDependencies contains the services used by the steps
type ServiceDependencies struct {
	Accounts      AccountService
	SecondFactors SecondFactorDetector
	Codes         CodeValidator
	Sessions      SessionIssuer
}

// StepRegistry manages and orders steps
type StepRegistry struct {
	steps []LoginFlowStep
}

func NewStepRegistry() *StepRegistry {
	return &StepRegistry{
		steps: make([]LoginFlowStep, 0),
	}
}

func (r *StepRegistry) AddStep(step LoginFlowStep) *StepRegistry {
	r.steps = append(r.steps, step)
	return r
}

// GetOrderedSteps returns steps sorted by their order
func (r *StepRegistry) GetOrderedSteps() []LoginFlowStep {
	orderedSteps := make([]LoginFlowStep, len(r.steps))
	copy(orderedSteps, r.steps)

	sort.SliceStable(orderedSteps, func(i, j int) bool {
		return orderedSteps[i].Order() < orderedSteps[j].Order()
	})

	return orderedSteps
}

// FlowExecutor runs the steps of a registry in order
type FlowExecutor struct {
	registry *StepRegistry
	services *ServiceDependencies
}

func NewFlowExecutor(registry *StepRegistry, services *ServiceDependencies) *FlowExecutor {
	return &FlowExecutor{
		registry: registry,
		services: services,
	}
}

// Execute runs the complete flow
func (e *FlowExecutor) Execute(ctx context.Context, request Request) Result {
	flowContext := &FlowContext{
		Request:  request,
		Result:   &Result{},
		Services: e.services,
	}

	for _, step := range e.registry.GetOrderedSteps() {
		if step.ShouldSkip(ctx, flowContext) {
			continue
		}

		stepResult, err := step.Execute(ctx, flowContext)
		if err != nil {
			slog.Error("Sign-on step failed", "step", step.Name(), "err", err)
			flowContext.Result.ErrorResponse = &Error{
				Type:    ErrorTypeStepExecution,
				Message: fmt.Sprintf("Step '%s' failed: %v", step.Name(), err),
			}
			return *flowContext.Result
		}

		if stepResult.Error != nil {
			flowContext.Result.ErrorResponse = stepResult.Error
			return *flowContext.Result
		}

		if !stepResult.Continue {
			break
		}
	}

	return *flowContext.Result
}

// FlowBuilder provides a fluent interface for building flows
type FlowBuilder struct {
	registry *StepRegistry
}

func NewFlowBuilder() *FlowBuilder {
	return &FlowBuilder{
		registry: NewStepRegistry(),
	}
}

func (b *FlowBuilder) AddStep(step LoginFlowStep) *FlowBuilder {
	b.registry.AddStep(step)
	return b
}

func (b *FlowBuilder) Build(services *ServiceDependencies) *FlowExecutor {
	return NewFlowExecutor(b.registry, services)
}

// Predefined step orders
const (
	OrderAccountResolution = 100
	OrderAccountStatus     = 200
	OrderCredentialCheck   = 300
	OrderSecondFactor      = 400
	OrderSessionIssuance   = 500
)
