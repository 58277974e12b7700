package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind identifies which stage of the analysis pipeline failed
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota + 1
	KindTimeout
	KindTransport
	KindMalformedResponse
	KindUpstream
	KindEmptyOutput
	KindUnparsableAnalysis
)

var kindNames = map[ErrorKind]string{
	KindConfiguration:      "configuration",
	KindTimeout:            "timeout",
	KindTransport:          "transport",
	KindMalformedResponse:  "malformed_response",
	KindUpstream:           "upstream",
	KindEmptyOutput:        "empty_output",
	KindUnparsableAnalysis: "unparsable_analysis",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Infrastructure reports whether the failure came from the transport or the API
// framework rather than from the model output. These are the kinds worth retrying.
func (k ErrorKind) Infrastructure() bool {
	switch k {
	case KindTimeout, KindTransport, KindMalformedResponse:
		return true
	}
	return false
}

// ModelQuality reports whether the model answered but the answer was unusable
func (k ErrorKind) ModelQuality() bool {
	return k == KindEmptyOutput || k == KindUnparsableAnalysis
}

// KindOf returns the pipeline error kind carried anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return 0, false
}

// ConfigurationError means a required static resource (the system instruction) is missing
type ConfigurationError struct {
	Resource string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Resource)
}

func (e *ConfigurationError) Unwrap() error   { return e.Err }
func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

// TimeoutError means the completion call did not finish within the configured duration
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("completion request timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error   { return e.Err }
func (e *TimeoutError) Kind() ErrorKind { return KindTimeout }

// TransportError covers every other failure reaching the completion endpoint,
// including non-2xx HTTP statuses (StatusCode is 0 when no response was received).
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Kind() ErrorKind { return KindTransport }

// Retryable reports whether another attempt can succeed: no response at all,
// rate limiting or a server-side status. Other 4xx statuses need a config fix.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// MalformedResponseError means the transport body is not a JSON object
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("completion response is not valid JSON: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error   { return e.Err }
func (e *MalformedResponseError) Kind() ErrorKind { return KindMalformedResponse }

// UpstreamError carries an API-level error or the absence of any usable choice
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Message)
}

func (e *UpstreamError) Kind() ErrorKind { return KindUpstream }

// EmptyOutputError means the first choice carried no text after trimming
type EmptyOutputError struct {
	FinishReason string
}

func (e *EmptyOutputError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("model returned empty content (finish_reason=%s)", e.FinishReason)
	}
	return "model returned empty content"
}

func (e *EmptyOutputError) Kind() ErrorKind { return KindEmptyOutput }

// UnparsableAnalysisError means the model text is not a JSON object.
// Raw holds the trimmed text exactly as the model produced it.
type UnparsableAnalysisError struct {
	Raw string
	Err error
}

func (e *UnparsableAnalysisError) Error() string {
	return fmt.Sprintf("failed to parse analysis JSON: %v", e.Err)
}

func (e *UnparsableAnalysisError) Unwrap() error   { return e.Err }
func (e *UnparsableAnalysisError) Kind() ErrorKind { return KindUnparsableAnalysis }
