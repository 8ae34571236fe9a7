package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/checkout-login/pkg/account"
	"github.com/tendant/checkout-login/pkg/csrf"
	"github.com/tendant/checkout-login/pkg/loginflow"
	"github.com/tendant/checkout-login/pkg/session"
	"github.com/tendant/checkout-login/pkg/twofa"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	server *httptest.Server
	twofa  *twofa.Service
	secret string
	nonce  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	accounts := account.NewService(account.NewInMemoryAccountRepository(),
		account.WithHasherRegistry(account.NewHasherRegistry(&account.BcryptHasher{Cost: bcrypt.MinCost})))
	enrollments := twofa.NewInMemoryEnrollmentRepository()
	twofaService := twofa.NewService(enrollments)
	detector := twofa.NewDetector(twofaService, enrollments)

	_, err := accounts.CreateAccount(ctx, account.CreateAccountParams{Login: "alice", Email: "alice@example.com", Password: "correctpw"})
	require.NoError(t, err)
	bob, err := accounts.CreateAccount(ctx, account.CreateAccountParams{Login: "bob", Email: "bob@example.com", Password: "bobpw"})
	require.NoError(t, err)
	enrollment, err := twofaService.Enroll(ctx, bob.ID, bob.Email)
	require.NoError(t, err)

	flow := loginflow.NewLoginFlowService(&loginflow.ServiceDependencies{
		Accounts:      accounts,
		SecondFactors: detector,
		Codes:         twofaService,
		Sessions:      session.NewIssuer("gateway-session-secret", "checkout-login", time.Hour),
	})
	guard := csrf.NewGuard("gateway-csrf-secret")
	svc := NewService(NewLocalIdentityProvider(accounts, flow), detector, guard)
	handle := NewHandle(svc, session.NewCookieWriter("", true, false), WithLostPasswordURL("/lost-password"))

	r := chi.NewRouter()
	r.Mount(handle.Prefix(), handle.Routes())
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	nonce, err := guard.Issue()
	require.NoError(t, err)

	return &testEnv{server: server, twofa: twofaService, secret: enrollment.Secret, nonce: nonce}
}

func (e *testEnv) postForm(t *testing.T, path string, values url.Values) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.PostForm(e.server.URL+DefaultPrefix+path, values)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestBootstrap(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + DefaultPrefix + "/bootstrap")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var boot BootstrapResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&boot))
	assert.Equal(t, DefaultPrefix+"/ajax", boot.AjaxURL)
	assert.Equal(t, "/lost-password", boot.LostPasswordURL)
	assert.NotEmpty(t, boot.Nonce)

	_, body := env.postForm(t, "/ajax", url.Values{"action": {ActionCheckUser}, "nonce": {boot.Nonce}, "username": {"alice"}})
	assert.Equal(t, true, body["exists"])
}

func TestAjaxDispatch(t *testing.T) {
	env := newTestEnv(t)

	t.Run("check user", func(t *testing.T) {
		resp, body := env.postForm(t, "/ajax", url.Values{"action": {ActionCheckUser}, "nonce": {env.nonce}, "username": {"bob@example.com"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["exists"])
		assert.Equal(t, true, body["has_2fa"])
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, body := env.postForm(t, "/ajax", url.Values{"action": {ActionCheckUser}, "nonce": {env.nonce}, "username": {"newuser@example.com"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["exists"])
	})

	t.Run("verify password", func(t *testing.T) {
		_, body := env.postForm(t, "/ajax", url.Values{"action": {ActionVerifyPassword}, "nonce": {env.nonce}, "username": {"alice"}, "password": {"correctpw"}})
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, false, body["has_2fa"])

		_, body = env.postForm(t, "/ajax", url.Values{"action": {ActionVerifyPassword}, "nonce": {env.nonce}, "username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "Incorrect password", body["msg"])
	})

	t.Run("unknown action", func(t *testing.T) {
		resp, _ := env.postForm(t, "/ajax", url.Values{"action": {"delete_everything"}, "nonce": {env.nonce}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad nonce is forbidden", func(t *testing.T) {
		for _, action := range []string{ActionCheckUser, ActionVerifyPassword, ActionLoginWith2FA} {
			resp, body := env.postForm(t, "/ajax", url.Values{"action": {action}, "nonce": {"forged"}, "username": {"alice"}, "password": {"correctpw"}})
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "SECURITY_CHECK_FAILED", body["code"])
			assert.Empty(t, resp.Cookies())
		}
	})
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	t.Run("direct login", func(t *testing.T) {
		resp, body := env.postForm(t, "/login", url.Values{"nonce": {env.nonce}, "username": {"alice"}, "password": {"correctpw"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("wrong code keeps the message", func(t *testing.T) {
		code, err := env.twofa.GenerateCode(env.secret)
		require.NoError(t, err)
		wrong := "123456"
		if code == wrong {
			wrong = "654321"
		}
		resp, body := env.postForm(t, "/login", url.Values{"nonce": {env.nonce}, "username": {"bob"}, "password": {"bobpw"}, "otp_code": {wrong}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "Invalid code", body["msg"])
		assert.Empty(t, resp.Cookies())
	})

	t.Run("legacy code field", func(t *testing.T) {
		code, err := env.twofa.GenerateCode(env.secret)
		require.NoError(t, err)
		resp, body := env.postForm(t, "/ajax", url.Values{"action": {ActionLoginWith2FA}, "nonce": {env.nonce}, "username": {"bob@example.com"}, "password": {"bobpw"}, "wfls_token": {code}})
		assert.Equal(t, true, body["ok"])
		assert.Len(t, resp.Cookies(), 1)
	})
}

func TestJSONBody(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"nonce":"` + env.nonce + `","username":"alice","password":"correctpw"}`
	resp, err := http.Post(env.server.URL+DefaultPrefix+"/verify-password", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result VerifyPasswordResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.OK)

	resp2, err := http.Post(env.server.URL+DefaultPrefix+"/identify", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestOversizedBodyRejected(t *testing.T) {
	env := newTestEnv(t)
	huge := strings.Repeat("a", MaxRequestBody+1)

	payload := `{"nonce":"` + env.nonce + `","username":"` + huge + `","password":"x"}`
	resp, err := http.Post(env.server.URL+DefaultPrefix+"/verify-password", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form := url.Values{"nonce": {env.nonce}, "username": {huge}, "password": {"x"}}
	resp, err = http.Post(env.server.URL+DefaultPrefix+"/verify-password", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
