// Package apperr : типизированные ошибки сервиса. Вид (Kind) и причина (Reason)
// сохраняются при оборачивании через %w и по ним обработчики выбирают HTTP статус.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuth       Kind = "auth"
	KindPayment    Kind = "payment"
	KindCapability Kind = "capability"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

type Reason string

const (
	ReasonBadCredentials  Reason = "bad_credentials"
	ReasonUnauthenticated Reason = "unauthenticated"

	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonLedgerUnavailable Reason = "ledger_unavailable"
	ReasonLedgerRejected    Reason = "ledger_rejected"
	ReasonInvalidDocument   Reason = "invalid_document"
	ReasonInvalidAmount     Reason = "invalid_amount"
	ReasonPaymentPending    Reason = "payment_pending"
	ReasonPaymentCancelled  Reason = "payment_cancelled"

	ReasonNoAccess           Reason = "no_access"
	ReasonCapabilityExpired  Reason = "capability_expired"
	ReasonAlreadyConsumed    Reason = "already_consumed"
	ReasonUnknownCapability  Reason = "unknown_capability"
	ReasonIssuanceFailed     Reason = "issuance_failed"
	ReasonContentUnavailable Reason = "content_unavailable"
)

type Error struct {
	Kind      Kind
	Reason    Reason
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Auth(reason Reason, message string) *Error {
	return &Error{Kind: KindAuth, Reason: reason, Message: message}
}

// Payment : ошибка реестра. ledger_unavailable и payment_pending можно повторить
func Payment(reason Reason, message string, err error) *Error {
	return &Error{
		Kind:      KindPayment,
		Reason:    reason,
		Message:   message,
		Retryable: reason == ReasonLedgerUnavailable || reason == ReasonPaymentPending,
		Err:       err,
	}
}

func Capability(reason Reason, message string, err error) *Error {
	return &Error{Kind: KindCapability, Reason: reason, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func ReasonOf(err error) Reason {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

func IsRetryable(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Retryable
}

func HTTPStatus(e *Error) int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindPayment:
		switch e.Reason {
		case ReasonInsufficientFunds:
			return http.StatusPaymentRequired
		case ReasonLedgerUnavailable:
			return http.StatusServiceUnavailable
		case ReasonPaymentPending:
			return http.StatusConflict
		case ReasonPaymentCancelled:
			return http.StatusRequestTimeout
		default:
			return http.StatusUnprocessableEntity
		}
	case KindCapability:
		switch e.Reason {
		case ReasonUnknownCapability:
			return http.StatusNotFound
		case ReasonCapabilityExpired, ReasonAlreadyConsumed:
			return http.StatusGone
		case ReasonNoAccess:
			return http.StatusForbidden
		default:
			return http.StatusInternalServerError
		}
	default:
		return http.StatusInternalServerError
	}
}
