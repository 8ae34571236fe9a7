package gateway

import (
	"context"

	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/loginflow"
)

// LocalIdentityProvider serves accounts from the account service and signs
// on through the login flow.
type LocalIdentityProvider struct {
	*account.Service
	flow *loginflow.LoginFlowService
}

func NewLocalIdentityProvider(accounts *account.Service, flow *loginflow.LoginFlowService) *LocalIdentityProvider {
	return &LocalIdentityProvider{
		Service: accounts,
		flow:    flow,
	}
}

func (p *LocalIdentityProvider) SignOn(ctx context.Context, request loginflow.Request) loginflow.Result {
	return p.flow.SignOn(ctx, request)
}
