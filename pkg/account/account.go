package account

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Account is an identity known to the identity provider.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Locked       bool      `json:"locked"`
	CreatedAt    time.Time `json:"created_at"`
}

// SanitizeIdentifier trims surrounding whitespace and drops control characters.
func SanitizeIdentifier(identifier string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, identifier)
	return strings.TrimSpace(cleaned)
}

// LooksLikeEmail reports whether identifier should be looked up as an email
// address before falling back to a login name.
func LooksLikeEmail(identifier string) bool {
	at := strings.LastIndex(identifier, "@")
	if at <= 0 || at == len(identifier)-1 {
		return false
	}
	domain := identifier[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	addr, err := mail.ParseAddress(identifier)
	if err != nil {
		return false
	}
	// reject display-name forms such as "Bob <bob@example.com>"
	return addr.Address == identifier
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
