// Package domainerrors defines the coded error type exchanged between domain
// services and transport. Services attach a stable machine-readable code;
// handlers map codes onto HTTP statuses without inspecting error text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class. Codes are part of the service contract and
// must stay stable across releases.
type Code string

const (
	// Domain rule violations.
	CodeUserNotFound        Code = "user_not_found"
	CodeItemNotFound        Code = "item_not_found"
	CodeLoanNotFound        Code = "loan_not_found"
	CodeDebtBlocked         Code = "debt_blocked"
	CodeInsufficientStock   Code = "insufficient_stock"
	CodeAlreadyReturned     Code = "already_returned"
	CodeLoanNotActive       Code = "loan_not_active"
	CodeRenewalLimitReached Code = "renewal_limit_reached"

	// Transport and infrastructure classes.
	CodeBadRequest Code = "bad_request"
	CodeConflict   Code = "conflict"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error so the cause
// remains reachable via errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUserNotFound, CodeItemNotFound, CodeLoanNotFound:
		return http.StatusNotFound
	case CodeDebtBlocked, CodeInsufficientStock, CodeAlreadyReturned,
		CodeLoanNotActive, CodeRenewalLimitReached, CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
