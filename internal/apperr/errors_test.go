package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"paydocs-server/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", errors.New("dial tcp"))
	wrapped := fmt.Errorf("[PaymentService] оплата: %w", base)

	assert.Equal(t, apperr.KindPayment, apperr.KindOf(wrapped))
	assert.Equal(t, apperr.ReasonLedgerUnavailable, apperr.ReasonOf(wrapped))
	assert.True(t, apperr.IsRetryable(wrapped))

	var appErr *apperr.Error
	require.True(t, errors.As(wrapped, &appErr))
	assert.Contains(t, appErr.Error(), "dial tcp")
}

func TestRetryableOnlyForTransientPaymentReasons(t *testing.T) {
	assert.True(t, apperr.Payment(apperr.ReasonPaymentPending, "m", nil).Retryable)
	assert.False(t, apperr.Payment(apperr.ReasonInsufficientFunds, "m", nil).Retryable)
	assert.False(t, apperr.Payment(apperr.ReasonInvalidDocument, "m", nil).Retryable)
	assert.False(t, apperr.IsRetryable(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *apperr.Error
		want int
	}{
		{apperr.Auth(apperr.ReasonBadCredentials, "m"), http.StatusUnauthorized},
		{apperr.Payment(apperr.ReasonInsufficientFunds, "m", nil), http.StatusPaymentRequired},
		{apperr.Payment(apperr.ReasonLedgerUnavailable, "m", nil), http.StatusServiceUnavailable},
		{apperr.Payment(apperr.ReasonInvalidAmount, "m", nil), http.StatusUnprocessableEntity},
		{apperr.Payment(apperr.ReasonPaymentPending, "m", nil), http.StatusConflict},
		{apperr.Capability(apperr.ReasonCapabilityExpired, "m", nil), http.StatusGone},
		{apperr.Capability(apperr.ReasonAlreadyConsumed, "m", nil), http.StatusGone},
		{apperr.Capability(apperr.ReasonUnknownCapability, "m", nil), http.StatusNotFound},
		{apperr.Capability(apperr.ReasonNoAccess, "m", nil), http.StatusForbidden},
		{apperr.NotFound("m"), http.StatusNotFound},
		{apperr.Validation("m"), http.StatusBadRequest},
		{apperr.Internal("m", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err), "%s/%s", tt.err.Kind, tt.err.Reason)
	}
}
