// Package csrf issues and validates anti-forgery tokens bound to a single
// action name. Tokens are HS256 signed and expire after a fixed TTL.
package csrf

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAction = "checkout_login"
	DefaultTTL    = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid anti-forgery token")

type claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

type Guard struct {
	secret []byte
	action string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Guard)

func WithAction(action string) Option {
	return func(g *Guard) {
		if action != "" {
			g.action = action
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

func NewGuard(secret string, opts ...Option) *Guard {
	g := &Guard{
		secret: []byte(secret),
		action: DefaultAction,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Issue returns a fresh token for the guard's action
func (g *Guard) Issue() (string, error) {
	now := g.now()
	c := claims{
		Action: g.action,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign anti-forgery token: %w", err)
	}
	return token, nil
}

// Validate reports an error unless token was issued by this guard for its action and has not expired
func (g *Guard) Validate(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if c.Action != g.action {
		return ErrInvalidToken
	}
	return nil
}
