package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeSecurityCheckFailed, http.StatusForbidden},
		{ErrCodeValidationFailed, http.StatusOK},
		{ErrCodeNotFound, http.StatusOK},
		{ErrCodeCredentialMismatch, http.StatusOK},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWrapAndCode(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := InternalWrap(base, "failed to resolve account")

	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "[INTERNAL_ERROR] failed to resolve account: connection refused", err.Error())

	wrapped := fmt.Errorf("gateway: %w", SecurityCheckFailed("Security check failed."))
	assert.Equal(t, ErrCodeSecurityCheckFailed, GetCode(wrapped))
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain")))
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}
