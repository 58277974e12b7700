package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
)

// AppError is the application-level error carried to HTTP responses and batch logs
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func newAppError(raw error, httpCode int, code ErrorCode, message string) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTERNAL, "Internal server error")
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, message)
}

func ErrInvalidPayload() AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "Invalid payload")
}

func ErrNotFound(resource string) AppError {
	return newAppError(nil, http.StatusNotFound, ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource))
}

func ErrConfiguration(resource string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_CONFIGURATION, "Configuration error").
		WithDetail("resource", resource)
}

// AI Analysis Errors

// ErrAIAnalysis maps an analysis pipeline failure to an application error.
// Model output problems are reported as 422, upstream/transport problems as 502/504.
func ErrAIAnalysis(err error) AppError {
	kind, ok := ai.KindOf(err)
	if !ok {
		return newAppError(err, http.StatusInternalServerError, ErrorCode_AI_ANALYSIS_FAILED, "AI analysis failed")
	}

	var appErr AppError
	switch kind {
	case ai.KindTimeout:
		appErr = newAppError(err, http.StatusGatewayTimeout, ErrorCode_AI_TIMEOUT, "Completion request timed out")
	case ai.KindTransport, ai.KindUpstream:
		appErr = newAppError(err, http.StatusBadGateway, ErrorCode_AI_UPSTREAM_FAILED, "Completion service failed")
	case ai.KindMalformedResponse:
		appErr = newAppError(err, http.StatusBadGateway, ErrorCode_AI_MALFORMED_RESPONSE, "Completion service returned a malformed response")
	case ai.KindEmptyOutput:
		appErr = newAppError(err, http.StatusUnprocessableEntity, ErrorCode_AI_EMPTY_OUTPUT, "Model returned no analysis")
	case ai.KindUnparsableAnalysis:
		appErr = newAppError(err, http.StatusUnprocessableEntity, ErrorCode_AI_UNPARSABLE_OUTPUT, "Model returned an unparsable analysis")
	case ai.KindConfiguration:
		appErr = newAppError(err, http.StatusInternalServerError, ErrorCode_CONFIGURATION, "Analyzer is not configured")
	default:
		appErr = newAppError(err, http.StatusInternalServerError, ErrorCode_AI_ANALYSIS_FAILED, "AI analysis failed")
	}
	return appErr.WithDetail("kind", kind.String())
}

// Integration Errors
func ErrDriveFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_INTEGRATION_DRIVE_FAILED,
		fmt.Sprintf("Drive operation failed: %s", operation))
}

func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_STORAGE_FAILED,
		fmt.Sprintf("Storage operation failed: %s", operation))
}

func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_CACHE_FAILED,
		fmt.Sprintf("Cache operation failed: %s", operation))
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_CONNECTION_FAILED, "Database connection failed")
}

func ErrWarehouseFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_QUERY_FAILED, "Database query failed").
		WithDetail("operation", operation)
}

// HTTPStatusOK represents a successful HTTP response.
func HTTPStatusOK(message string) AppError {
	return AppError{
		HTTPCode: http.StatusOK,
		Code:     ErrorCode_HTTP_OK,
		Message:  message,
	}
}

// As is a shorthand for extracting an AppError from err's chain
func As(err error) (AppError, bool) {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr, true
	}
	return AppError{}, false
}
