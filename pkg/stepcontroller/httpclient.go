package stepcontroller

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/render"
	"github.com/tendant/checkout-login/pkg/checkout"
	"github.com/tendant/checkout-login/pkg/gateway"
)

// HTTPGateway calls the gateway's action endpoint with the nonce obtained
// from the bootstrap endpoint.
type HTTPGateway struct {
	client          *http.Client
	ajaxURL         string
	nonce           string
	lostPasswordURL string
}

// NewHTTPGateway fetches the bootstrap configuration from baseURL+prefix
func NewHTTPGateway(ctx context.Context, client *http.Client, baseURL, prefix string) (*HTTPGateway, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+prefix+"/bootstrap", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bootstrap request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bootstrap request failed with status %d", resp.StatusCode)
	}

	var boot gateway.BootstrapResponse
	if err := render.DecodeJSON(resp.Body, &boot); err != nil {
		return nil, fmt.Errorf("failed to decode bootstrap response: %w", err)
	}

	ajax, err := url.Parse(boot.AjaxURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ajax url %q: %w", boot.AjaxURL, err)
	}

	return &HTTPGateway{
		client:          client,
		ajaxURL:         base.ResolveReference(ajax).String(),
		nonce:           boot.Nonce,
		lostPasswordURL: boot.LostPasswordURL,
	}, nil
}

func (g *HTTPGateway) LostPasswordURL() string {
	return g.lostPasswordURL
}

func (g *HTTPGateway) IdentifyUser(ctx context.Context, identifier string) (gateway.IdentifyResult, error) {
	var out gateway.IdentifyResult
	err := g.post(ctx, gateway.ActionCheckUser, url.Values{"username": {identifier}}, &out)
	return out, err
}

func (g *HTTPGateway) VerifyPassword(ctx context.Context, identifier, password string) (gateway.VerifyPasswordResult, error) {
	var out gateway.VerifyPasswordResult
	err := g.post(ctx, gateway.ActionVerifyPassword, url.Values{"username": {identifier}, "password": {password}}, &out)
	return out, err
}

func (g *HTTPGateway) LoginWithSecondFactor(ctx context.Context, identifier, password, otpCode string) (gateway.LoginResult, error) {
	var out gateway.LoginResult
	err := g.post(ctx, gateway.ActionLoginWith2FA, url.Values{"username": {identifier}, "password": {password}, "otp_code": {otpCode}}, &out)
	return out, err
}

// post sends a form-encoded action request. Any decodable JSON body is a
// result, whatever the status; only transport and decode failures are errors.
func (g *HTTPGateway) post(ctx context.Context, action string, values url.Values, out interface{}) error {
	values.Set("action", action)
	values.Set("nonce", g.nonce)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.ajaxURL, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if err := render.DecodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", action, resp.StatusCode, err)
	}
	return nil
}

// HTTPHost submits the checkout form to the order endpoint
type HTTPHost struct {
	client      *http.Client
	checkoutURL string
}

func NewHTTPHost(client *http.Client, checkoutURL string) *HTTPHost {
	return &HTTPHost{
		client:      client,
		checkoutURL: checkoutURL,
	}
}

func (h *HTTPHost) Submit(ctx context.Context, values FormValues) error {
	form := url.Values{"billing_email": {values.Identifier}}
	if values.CreateAccount {
		form.Set(checkout.CreateAccountField, "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.checkoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("checkout submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("checkout submission failed with status %d", resp.StatusCode)
	}
	return nil
}
