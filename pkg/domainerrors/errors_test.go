package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeDebtBlocked, "user has outstanding debt")

	assert.True(t, HasCode(err, CodeDebtBlocked))
	assert.False(t, HasCode(err, CodeUserNotFound))
	assert.False(t, HasCode(nil, CodeDebtBlocked))
	assert.False(t, HasCode(errors.New("plain"), CodeDebtBlocked))
}

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	inner := New(CodeInsufficientStock, "insufficient stock")
	wrapped := fmt.Errorf("creating loan: %w", inner)

	assert.True(t, HasCode(wrapped, CodeInsufficientStock))
	assert.Equal(t, CodeInsufficientStock, CodeOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "find user")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "find user")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("mystery")))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUserNotFound, http.StatusNotFound},
		{CodeItemNotFound, http.StatusNotFound},
		{CodeLoanNotFound, http.StatusNotFound},
		{CodeDebtBlocked, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusBadRequest},
		{CodeAlreadyReturned, http.StatusBadRequest},
		{CodeLoanNotActive, http.StatusBadRequest},
		{CodeRenewalLimitReached, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.code), string(tt.code))
	}
}
