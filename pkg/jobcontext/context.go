package jobcontext

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyDocumentID   KeyContext = "document_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyJobStartTime KeyContext = "job_start_time"
)

// Begin derives the context used to process one document: run metadata plus a timeout
func Begin(parentCtx context.Context, runID, documentID string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyDocumentID, documentID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// GetRunID extracts the batch run ID from context
func GetRunID(ctx context.Context) string {
	runID, _ := ctx.Value(keyRunID).(string)
	return runID
}

// GetDocumentID extracts the document ID from context
func GetDocumentID(ctx context.Context) string {
	documentID, _ := ctx.Value(keyDocumentID).(string)
	return documentID
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// Fields returns the context metadata as log fields
func Fields(ctx context.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("run_id", GetRunID(ctx)),
		zap.String("document_id", GetDocumentID(ctx)),
		zap.Int("attempt", GetRetryAttempt(ctx)),
	}
	if start, ok := GetJobStartTime(ctx); ok {
		fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	}
	return fields
}

// IsRetryableError checks if an error should trigger a retry
// Retryable errors include: network errors, timeouts, rate limits, 5xx responses
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Analysis pipeline errors carry their own classification
	var transportErr *ai.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable()
	}
	if kind, ok := ai.KindOf(err); ok {
		return kind.Infrastructure()
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusTooManyRequests || gErr.Code >= http.StatusInternalServerError
	}

	errStr := strings.ToLower(err.Error())

	// Context errors (timeout, cancelled)
	if strings.Contains(errStr, "context deadline exceeded") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}
