package checkout

import (
	"net/http"
)

const (
	// CreateAccountField is posted by the login widget's create-account checkbox
	CreateAccountField = "ict_create_account"
	// HostCreateAccountField is the field order placement reads
	HostCreateAccountField = "createaccount"
)

// CreateAccountFilter maps the widget's create-account checkbox onto the
// host's create-account field before the form reaches order placement.
func CreateAccountFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			if r.PostForm.Get(CreateAccountField) == "1" {
				r.PostForm.Set(HostCreateAccountField, "1")
				r.Form.Set(HostCreateAccountField, "1")
			}
		}
		next.ServeHTTP(w, r)
	})
}
