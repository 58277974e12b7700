package errors

// ErrorCode is a stable machine-readable error identifier
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_CONFIGURATION

	// AI analysis
	ErrorCode_AI_ANALYSIS_FAILED
	ErrorCode_AI_TIMEOUT
	ErrorCode_AI_UPSTREAM_FAILED
	ErrorCode_AI_MALFORMED_RESPONSE
	ErrorCode_AI_EMPTY_OUTPUT
	ErrorCode_AI_UNPARSABLE_OUTPUT

	// Integrations
	ErrorCode_INTEGRATION_DRIVE_FAILED
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED

	// Warehouse
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_CONFIGURATION:              "CONFIGURATION",
	ErrorCode_AI_ANALYSIS_FAILED:         "AI_ANALYSIS_FAILED",
	ErrorCode_AI_TIMEOUT:                 "AI_TIMEOUT",
	ErrorCode_AI_UPSTREAM_FAILED:         "AI_UPSTREAM_FAILED",
	ErrorCode_AI_MALFORMED_RESPONSE:      "AI_MALFORMED_RESPONSE",
	ErrorCode_AI_EMPTY_OUTPUT:            "AI_EMPTY_OUTPUT",
	ErrorCode_AI_UNPARSABLE_OUTPUT:       "AI_UNPARSABLE_OUTPUT",
	ErrorCode_INTEGRATION_DRIVE_FAILED:   "INTEGRATION_DRIVE_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:       "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[ErrorCode_UNKNOWN]
}
