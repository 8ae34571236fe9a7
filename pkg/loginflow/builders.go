package loginflow

// NewSignOnFlow resolves the account, rejects locked accounts, checks the
// password, enforces an active second factor and issues a session.
func NewSignOnFlow(services *ServiceDependencies) *FlowExecutor {
	return NewFlowBuilder().
		AddStep(NewAccountResolutionStep()).
		AddStep(NewAccountStatusStep()).
		AddStep(NewCredentialCheckStep()).
		AddStep(NewSecondFactorStep()).
		AddStep(NewSessionIssuanceStep()).
		Build(services)
}

// BuildCustomFlow creates a flow with the given steps
func BuildCustomFlow(services *ServiceDependencies, steps ...LoginFlowStep) *FlowExecutor {
	builder := NewFlowBuilder()
	for _, step := range steps {
		builder.AddStep(step)
	}
	return builder.Build(services)
}
