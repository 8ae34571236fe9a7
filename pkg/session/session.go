package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/checkout-login/pkg/account"
)

const DefaultTTL = 14 * 24 * time.Hour

// Session is an authenticated session established by a successful sign-on
type Session struct {
	ID        string
	AccountID uuid.UUID
	Login     string
	Token     string
	ExpiresAt time.Time
}

// Claims struct for session JWT claims
type Claims struct {
	Login string `json:"login,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a session for the account
func (i *Issuer) Issue(acct account.Account) (Session, error) {
	now := i.now().UTC()
	claims := Claims{
		Login: acct.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			Issuer:    i.issuer,
			Subject:   acct.ID.String(),
			ID:        uuid.New().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		slog.Error("Failed to sign session token", "accountID", acct.ID, "err", err)
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return Session{
		ID:        claims.ID,
		AccountID: acct.ID,
		Login:     acct.Login,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse validates a session token and returns its claims
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
