package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindAlreadyInitialized Kind = "already_initialized"
	KindRateLimited        Kind = "rate_limited"
	KindUpstream           Kind = "upstream"
	KindNotification       Kind = "notification"
	KindInternal           Kind = "internal"
)

// Error codes for different categories
const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials ErrorCode = "AUTH_1001"
	ErrCodeInvalidToken       ErrorCode = "AUTH_1003"
	ErrCodeTokenExpired       ErrorCode = "AUTH_1004"
	ErrCodeEmailNotConfirmed  ErrorCode = "AUTH_1009"
	ErrCodeInvalidRecovery    ErrorCode = "AUTH_1010"
	ErrCodeMissingCredential  ErrorCode = "AUTH_1011"

	// Validation Errors (2xxx)
	ErrCodeInvalidEmail    ErrorCode = "VALID_2001"
	ErrCodeInvalidPassword ErrorCode = "VALID_2002"
	ErrCodeInvalidRequest  ErrorCode = "VALID_2005"
	ErrCodeInvalidAction   ErrorCode = "VALID_2006"

	// Rate Limiting Errors (3xxx)
	ErrCodeRateLimitExceeded ErrorCode = "RATE_3001"
	ErrCodeIPBlocked         ErrorCode = "RATE_3002"
	ErrCodeUserBlocked       ErrorCode = "RATE_3003"

	// reCAPTCHA Errors (4xxx)
	ErrCodeRecaptchaInvalid ErrorCode = "RECAPTCHA_4001"
	ErrCodeRecaptchaFailed  ErrorCode = "RECAPTCHA_4002"

	// Upstream Errors (5xxx)
	ErrCodeDatabaseError    ErrorCode = "DB_5001"
	ErrCodeIdentityProvider ErrorCode = "IDP_5101"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"

	// Security Errors (7xxx)
	ErrCodeAdminRequired ErrorCode = "SEC_7003"
	ErrCodeSelfAction    ErrorCode = "SEC_7004"

	// Admin workflow Errors (8xxx)
	ErrCodeAlreadyInitialized ErrorCode = "ADMIN_8001"
	ErrCodeRequestNotFound    ErrorCode = "ADMIN_8002"
	ErrCodeAlreadyReviewed    ErrorCode = "ADMIN_8003"
	ErrCodeEmailTaken         ErrorCode = "ADMIN_8004"
	ErrCodeIdentityNotFound   ErrorCode = "ADMIN_8005"
	ErrCodeNotificationFailed ErrorCode = "ADMIN_8006"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, kind Kind, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Authentication errors
func ErrInvalidCredentials() *AppError {
	return NewAppError(ErrCodeInvalidCredentials, KindUnauthenticated, "Invalid email or password", "", nil)
}

func ErrInvalidToken(details string) *AppError {
	return NewAppError(ErrCodeInvalidToken, KindUnauthenticated, "Invalid or expired token", details, nil)
}

func ErrMissingCredential() *AppError {
	return NewAppError(ErrCodeMissingCredential, KindUnauthenticated, "Authorization required", "", nil)
}

func ErrEmailNotConfirmed() *AppError {
	return NewAppError(ErrCodeEmailNotConfirmed, KindUnauthenticated, "Email address has not been confirmed", "", nil)
}

func ErrInvalidRecoveryToken() *AppError {
	return NewAppError(ErrCodeInvalidRecovery, KindUnauthenticated, "Recovery link is invalid or has expired", "", nil)
}

// Validation errors
func ErrValidation(message string, cause error) *AppError {
	return NewAppError(ErrCodeInvalidRequest, KindValidation, message, "", cause)
}

func ErrMissingField(field string) *AppError {
	return NewAppError(ErrCodeInvalidRequest, KindValidation, "Missing required field", fmt.Sprintf("Field: %s", field), nil)
}

func ErrInvalidAction(action string) *AppError {
	return NewAppError(ErrCodeInvalidAction, KindValidation, "Action must be approve or reject", fmt.Sprintf("Action: %s", action), nil)
}

// Rate limiting errors
func ErrRateLimitExceeded() *AppError {
	return NewAppError(ErrCodeRateLimitExceeded, KindRateLimited, "Too many requests. Please try again later.", "", nil)
}

func ErrIPBlocked(ip string) *AppError {
	return NewAppError(ErrCodeIPBlocked, KindRateLimited, "IP address is blocked", fmt.Sprintf("IP: %s", ip), nil)
}

func ErrUserBlocked(userID string) *AppError {
	return NewAppError(ErrCodeUserBlocked, KindRateLimited, "User account is temporarily blocked", fmt.Sprintf("User ID: %s", userID), nil)
}

// reCAPTCHA errors
func ErrRecaptchaInvalid(cause error) *AppError {
	return NewAppError(ErrCodeRecaptchaInvalid, KindValidation, "reCAPTCHA verification failed", "", cause)
}

// Authorization errors
func ErrAdminRequired() *AppError {
	return NewAppError(ErrCodeAdminRequired, KindForbidden, "Admin access required", "", nil)
}

func ErrSelfAction(action string) *AppError {
	return NewAppError(ErrCodeSelfAction, KindForbidden, "Admins cannot perform this action on themselves", fmt.Sprintf("Action: %s", action), nil)
}

// Admin workflow errors
func ErrAlreadyInitialized() *AppError {
	return NewAppError(ErrCodeAlreadyInitialized, KindAlreadyInitialized, "An admin account already exists", "", nil)
}

func ErrRequestNotFound(requestID string) *AppError {
	return NewAppError(ErrCodeRequestNotFound, KindNotFound, "Admin request not found", fmt.Sprintf("Request ID: %s", requestID), nil)
}

func ErrAlreadyReviewed(requestID string) *AppError {
	return NewAppError(ErrCodeAlreadyReviewed, KindConflict, "Request has already been reviewed", fmt.Sprintf("Request ID: %s", requestID), nil)
}

func ErrEmailTaken() *AppError {
	return NewAppError(ErrCodeEmailTaken, KindConflict, "Email is already registered", "", nil)
}

func ErrIdentityNotFound(userID string) *AppError {
	return NewAppError(ErrCodeIdentityNotFound, KindNotFound, "User not found", fmt.Sprintf("User ID: %s", userID), nil)
}

func ErrNotificationFailed(cause error) *AppError {
	return NewAppError(ErrCodeNotificationFailed, KindNotification, "Notification could not be delivered", "", cause)
}

// Upstream errors
func ErrIdentityProvider(operation string, cause error) *AppError {
	return NewAppError(ErrCodeIdentityProvider, KindUpstream, "Identity provider request failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrDatabaseError(operation string, cause error) *AppError {
	return NewAppError(ErrCodeDatabaseError, KindUpstream, "Database operation failed", fmt.Sprintf("Operation: %s", operation), cause)
}

// Server errors
func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, KindInternal, "Internal server error", details, cause)
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// GetHTTPStatusCode maps an error to the status the API responds with.
func GetHTTPStatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindAlreadyInitialized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message safe to show a client. Internal causes are never exposed.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInternal, KindUpstream:
			return "Internal server error"
		}
		return appErr.Message
	}
	return "Internal server error"
}

// PublicCode returns the error code for err, if any.
func PublicCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return string(ErrCodeInternalServerError)
}
