package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	g := NewGuard("csrf-secret")

	token, err := g.Issue()
	require.NoError(t, err)
	assert.NoError(t, g.Validate(token))

	tests := []struct {
		name  string
		token string
		guard *Guard
	}{
		{name: "empty", token: "", guard: g},
		{name: "garbage", token: "not-a-token", guard: g},
		{name: "other secret", token: token, guard: NewGuard("other-secret")},
		{name: "other action", token: token, guard: NewGuard("csrf-secret", WithAction("comment_form"))},
		{name: "tampered", token: token + "x", guard: g},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.guard.Validate(tt.token), ErrInvalidToken)
		})
	}
}

func TestGuardExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGuard("csrf-secret", WithTTL(time.Hour), WithNow(func() time.Time { return now }))

	token, err := g.Issue()
	require.NoError(t, err)
	assert.NoError(t, g.Validate(token))

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, g.Validate(token), ErrInvalidToken)
}
