package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/checkout-login/pkg/account"
)

const testSecret = "session-test-secret-0123456789"

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer(testSecret, "checkout-login", time.Hour)
	acct := account.Account{ID: uuid.New(), Login: "alice"}

	s, err := issuer.Issue(acct)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, s.AccountID)
	assert.NotEmpty(t, s.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	claims, err := issuer.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Login)
	assert.Equal(t, acct.ID.String(), claims.Subject)

	other := NewIssuer("another-secret-0123456789abcdef", "checkout-login", time.Hour)
	_, err = other.Parse(s.Token)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	issuer := NewIssuer(testSecret, "checkout-login", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	s, err := issuer.Issue(account.Account{ID: uuid.New(), Login: "alice"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(s.Token)
	assert.Error(t, err)
}

func TestMeHandler(t *testing.T) {
	cookies := NewCookieWriter("", true, false)
	issuer := NewIssuer(testSecret, "checkout-login", time.Hour)
	acct := account.Account{ID: uuid.New(), Login: "bob"}
	s, err := issuer.Issue(acct)
	require.NoError(t, err)

	h := Handler(issuer, cookies)

	t.Run("with session cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cookies.Establish(rec, s)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var me MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, acct.ID.String(), me.AccountID)
		assert.Equal(t, "bob", me.Login)
	})

	t.Run("without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+s.Token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("token from another issuer", func(t *testing.T) {
		foreign, err := NewIssuer(testSecret, "someone-else", time.Hour).Issue(acct)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+foreign.Token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, DefaultCookieName, cookies[0].Name)
		assert.True(t, cookies[0].MaxAge < 0)
	})
}
