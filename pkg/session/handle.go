package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
)

type MeResponse struct {
	AccountID string `json:"account_id"`
	Login     string `json:"login"`
}

// Handler returns routes that report and end the current session.
// GET /me requires a valid session cookie or bearer token from issuer.
func Handler(issuer *Issuer, cookies CookieWriter) http.Handler {
	tokenAuth := jwtauth.New("HS256", issuer.secret, nil)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verify(tokenAuth, cookies.TokenFromCookie, jwtauth.TokenFromHeader))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			claims, err := issuer.Parse(tokenFromRequest(r, cookies))
			if err != nil {
				slog.Warn("Rejected session token", "err", err)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			render.JSON(w, r, MeResponse{AccountID: claims.Subject, Login: claims.Login})
		})
	})
	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		cookies.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// tokenFromRequest looks the token up in the same order as jwtauth.Verify
func tokenFromRequest(r *http.Request, cookies CookieWriter) string {
	if token := cookies.TokenFromCookie(r); token != "" {
		return token
	}
	return jwtauth.TokenFromHeader(r)
}
