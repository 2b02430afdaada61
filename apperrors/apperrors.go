// Package apperrors defines the stable, machine-readable error taxonomy the
// API surfaces. Handlers wrap domain failures in one of these kinds and hand
// them to Respond; secrets (hashes, OTP codes) never appear in messages.
package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindExpired            Kind = "expired"
	KindInvalidCode        Kind = "invalid_code"
	KindInvalidTransition  Kind = "invalid_transition"
	KindSignatureInvalid   Kind = "signature_invalid"
	KindDeliveryError      Kind = "delivery_error"
	KindGatewayError       Kind = "gateway_error"
	KindUnauthorized       Kind = "unauthorized"
	KindBadRequest         Kind = "bad_request"
)

var statusByKind = map[Kind]int{
	KindNotFound:           http.StatusNotFound,
	KindForbidden:          http.StatusForbidden,
	KindConflict:           http.StatusConflict,
	KindInvalidCredentials: http.StatusBadRequest,
	KindExpired:            http.StatusBadRequest,
	KindInvalidCode:        http.StatusBadRequest,
	KindInvalidTransition:  http.StatusBadRequest,
	KindSignatureInvalid:   http.StatusBadRequest,
	KindDeliveryError:      http.StatusBadGateway,
	KindGatewayError:       http.StatusBadGateway,
	KindUnauthorized:       http.StatusUnauthorized,
	KindBadRequest:         http.StatusBadRequest,
}

// Error carries a taxonomy kind plus a human-readable message. Err, when set,
// preserves the underlying cause for logs and errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error           { return New(KindNotFound, message) }
func Forbidden(message string) *Error          { return New(KindForbidden, message) }
func Conflict(message string) *Error           { return New(KindConflict, message) }
func InvalidCredentials(message string) *Error { return New(KindInvalidCredentials, message) }
func Expired(message string) *Error            { return New(KindExpired, message) }
func InvalidCode(message string) *Error        { return New(KindInvalidCode, message) }
func InvalidTransition(message string) *Error  { return New(KindInvalidTransition, message) }
func SignatureInvalid(message string) *Error   { return New(KindSignatureInvalid, message) }
func Unauthorized(message string) *Error       { return New(KindUnauthorized, message) }
func BadRequest(message string) *Error         { return New(KindBadRequest, message) }

// KindOf extracts the taxonomy kind from any error chain. Unknown errors map
// to an empty kind.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Respond writes err as the standard error payload. Errors outside the
// taxonomy become opaque 500s so internal details never leak.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		status, ok := statusByKind[appErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": string(appErr.Kind), "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Server Error"})
}
