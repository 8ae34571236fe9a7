package session

import (
	"net/http"
)

const DefaultCookieName = "checkout_session"

// CookieWriter writes the session cookie
type CookieWriter struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

func NewCookieWriter(name string, httpOnly, secure bool) CookieWriter {
	if name == "" {
		name = DefaultCookieName
	}
	return CookieWriter{
		Name:     name,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Establish sets the session cookie on the response
func (c CookieWriter) Establish(w http.ResponseWriter, s Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    s.Token,
		Expires:  s.ExpiresAt,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Clear expires the session cookie
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// TokenFromCookie returns a token finder for jwtauth.Verify
func (c CookieWriter) TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
