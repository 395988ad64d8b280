// Package domain defines the core domain models for gamesvc.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// DomainError represents a locally raised error with a structured string code.
// Codes follow the format GS-{AREA}-{NNNN}.
type DomainError struct {
	Code    string // Error code (e.g., "GS-ARG-1001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("GS-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("GS-ARG-1002", "missing required argument")

	// ErrDataTooLarge indicates a payload or cover image over its hard limit.
	ErrDataTooLarge = NewDomainError("GS-ARG-1003", "data too large")
)

// ============================================================================
// Operation Lifecycle Errors (OP)
// ============================================================================

var (
	// ErrCanceled indicates the pending completion was canceled, either by the
	// caller, by a newer call replacing it, or by disposal.
	ErrCanceled = NewDomainError("GS-OP-4990", "operation canceled")

	// ErrTimeout indicates the bridge did not answer within the call timeout.
	ErrTimeout = NewDomainError("GS-OP-5040", "operation timed out")

	// ErrClosed indicates the controller has been closed.
	ErrClosed = NewDomainError("GS-OP-5030", "controller closed")

	// ErrNotAuthenticated indicates an operation requiring sign-in was called before it.
	ErrNotAuthenticated = NewDomainError("GS-OP-4010", "not authenticated")

	// ErrMalformedPayload indicates a bridge callback carried an undecodable document.
	ErrMalformedPayload = NewDomainError("GS-OP-5002", "malformed bridge payload")

	// ErrBridgeUnavailable indicates the bridge rejected the call outright.
	ErrBridgeUnavailable = NewDomainError("GS-OP-5031", "bridge unavailable")
)

// ============================================================================
// Cloud Save Errors (SAVE)
// ============================================================================

var (
	// ErrNoConflict indicates a conflict resolution was requested with no conflict recorded.
	ErrNoConflict = NewDomainError("GS-SAVE-4091", "no conflict to resolve")
)

// ============================================================================
// Vendor errors
// ============================================================================

// Subsystem names the service area a vendor error originated from.
type Subsystem string

// Subsystems.
const (
	SubsystemAuth         Subsystem = "auth"
	SubsystemAchievements Subsystem = "achievements"
	SubsystemLeaderboards Subsystem = "leaderboards"
	SubsystemCloudSave    Subsystem = "cloudsave"
	SubsystemStats        Subsystem = "stats"
	SubsystemEvents       Subsystem = "events"
)

// Kind is the enumerated classification of an error.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindNetworkError
	KindNotAuthenticated
	KindTimeout
	KindInternalError
	KindAPIUnavailable
	KindDataTooLarge
	KindConflictTimeout
	KindInvalidArgument
	KindAlreadyUnlocked
	KindUserCanceled
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindNotFound:         "NotFound",
	KindNetworkError:     "NetworkError",
	KindNotAuthenticated: "NotAuthenticated",
	KindTimeout:          "Timeout",
	KindInternalError:    "InternalError",
	KindAPIUnavailable:   "APIUnavailable",
	KindDataTooLarge:     "DataTooLarge",
	KindConflictTimeout:  "ConflictTimeout",
	KindInvalidArgument:  "InvalidArgument",
	KindAlreadyUnlocked:  "AlreadyUnlocked",
	KindUserCanceled:     "UserCanceled",
	KindCanceled:         "Canceled",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Vendor error codes shared by every subsystem.
const (
	CodeBridgeNotInitialized = -100
	CodeAPIUnavailable       = -1
	CodeUnknown              = 0
	CodeNetworkError         = 2
	CodeInternalError        = 100
)

// Subsystem-specific vendor error codes.
const (
	CodeNotAuthenticated = 1 // every subsystem but auth
	CodeNotFound         = 3 // achievements, leaderboards, cloud save
	CodeConflictTimeout  = 4 // cloud save
	CodeInvalidSteps     = 4 // achievements
	CodeDataTooLarge     = 5 // cloud save
	CodeAlreadyUnlocked  = 5 // achievements

	CodeAuthUserCanceled   = 1
	CodeAuthSignInRequired = 3
	CodeAuthSignInFailed   = 4
)

// Error is the value object carried by vendor error callbacks.
type Error struct {
	Subsystem Subsystem `json:"subsystem"`
	Code      int       `json:"errorCode"`
	Message   string    `json:"errorMessage"`
	// Subject is the achievement id, leaderboard id, filename or event id the
	// error refers to, if any.
	Subject string `json:"subject,omitempty"`
}

// NewError creates a vendor error.
func NewError(subsystem Subsystem, code int, message, subject string) *Error {
	return &Error{
		Subsystem: subsystem,
		Code:      code,
		Message:   message,
		Subject:   subject,
	}
}

// Kind derives the classification from the code. Code tables differ slightly
// per subsystem: auth reuses 1, 3 and 4 for its sign-in outcomes.
func (e *Error) Kind() Kind {
	switch e.Code {
	case CodeBridgeNotInitialized, CodeAPIUnavailable:
		if e.Subsystem == SubsystemAuth && e.Code == CodeAPIUnavailable {
			return KindTimeout
		}
		return KindAPIUnavailable
	case CodeNetworkError:
		return KindNetworkError
	case CodeInternalError:
		return KindInternalError
	}

	if e.Subsystem == SubsystemAuth {
		switch e.Code {
		case 1:
			return KindUserCanceled
		case 3:
			return KindNotAuthenticated
		case 4:
			return KindInternalError
		}
		return KindUnknown
	}

	switch e.Code {
	case 1:
		return KindNotAuthenticated
	case 3:
		if e.Subsystem == SubsystemStats || e.Subsystem == SubsystemEvents {
			return KindUnknown
		}
		return KindNotFound
	case 4:
		switch e.Subsystem {
		case SubsystemCloudSave:
			return KindConflictTimeout
		case SubsystemAchievements:
			return KindInvalidArgument
		}
	case 5:
		switch e.Subsystem {
		case SubsystemCloudSave:
			return KindDataTooLarge
		case SubsystemAchievements:
			return KindAlreadyUnlocked
		}
	}
	return KindUnknown
}

// Retryable reports whether retrying the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind() == KindNetworkError
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s %d] %s: %s", e.Subsystem, e.Code, e.Kind(), e.Message)
	if e.Subject != "" {
		msg += " (" + e.Subject + ")"
	}
	return msg
}

// AsError extracts a vendor error from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// KindOf classifies any error returned by this module.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if ve, ok := AsError(err); ok {
		return ve.Kind()
	}
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrCanceled), errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrDataTooLarge):
		return KindDataTooLarge
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, ErrBridgeUnavailable):
		return KindAPIUnavailable
	case errors.Is(err, ErrMalformedPayload):
		return KindInternalError
	}
	return KindUnknown
}

// IsNotFound reports whether err classifies as NotFound.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsCanceled reports whether err classifies as Canceled.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// IsTimeout reports whether err classifies as Timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}
