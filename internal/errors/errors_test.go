package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid id", ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
		{"wrapped status", fmt.Errorf("patch parcel: %w", ErrInvalidStatus), http.StatusBadRequest, "INVALID_STATUS"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"transition", ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"unknown owner", ErrUnknownOwner, http.StatusUnprocessableEntity, "UNKNOWN_OWNER"},
		{"store failure", fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.ToErrorResponse().Code)
		})
	}

	assert.Equal(t, "internal server error", MapErrorToHTTP(fmt.Errorf("boom")).Message)
}
