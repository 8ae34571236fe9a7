// Package loginflow runs sign-on as an ordered pipeline of steps.
//
// A sign-on resolves the identifier to an account, rejects locked accounts,
// verifies the password, enforces the one-time code when the account has an
// active second factor, and finally issues a session:
//
//	flowService := loginflow.NewLoginFlowService(&loginflow.ServiceDependencies{
//		Accounts:      accountService,
//		SecondFactors: detector,
//		Codes:         twofaService,
//		Sessions:      issuer,
//	})
//
//	result := flowService.SignOn(ctx, loginflow.Request{
//		Login:    "alice",
//		Password: "correctpw",
//		OTPCode:  "123456",
//	})
//	if result.ErrorResponse != nil {
//		// result.ErrorResponse.Message is safe to show to the user
//	}
//
// The code is passed on the request itself; steps never read it from
// shared request state.
//
// Custom flows can be assembled with NewFlowBuilder or BuildCustomFlow.
// Steps run in ascending Order; a step returning an Error stops the flow
// and a step returning a Go error is reported as a step_execution_error.
package loginflow
