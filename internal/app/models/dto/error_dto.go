package dto

import (
	"time"
)

// ErrorCode is the machine-readable reason carried in every error envelope
type ErrorCode string

const (
	// Credentials and account state
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeTokenNotFound      ErrorCode = "AUTH_007"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"
	ErrorCodeEmailNotVerified   ErrorCode = "AUTH_010"
	ErrorCodeAccountDisabled    ErrorCode = "AUTH_011"

	// Accounts, communities, publications and comments
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeConflict         ErrorCode = "RES_004"

	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Asset store, mail relay and everything unexpected
	ErrorCodeInternalServer       ErrorCode = "SRV_001"
	ErrorCodeExternalServiceError ErrorCode = "SRV_003"
)

// ErrorSeverity tells clients whether retrying by hand makes sense
type ErrorSeverity string

const (
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail describes what went wrong; Field names the offending request field
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"VAL_001"`
	Message  string        `json:"message" example:"contenido is required"`
	Field    string        `json:"field,omitempty" example:"contenido"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
}

// ErrorResponse is the failure envelope. Message repeats the detail message
// at the top level for clients that only read "message".
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Message   string       `json:"message" example:"contenido is required"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorDetail creates a detail with ERROR severity
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField names the request field that failed validation
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity overrides the severity
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// NewErrorResponse wraps a detail into the failure envelope
func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Message:   detail.Message,
		Error:     detail,
		Timestamp: time.Now(),
	}
}
