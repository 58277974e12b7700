package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name           string
		err            error
		kind           ErrorKind
		infrastructure bool
		modelQuality   bool
	}{
		{"configuration", &ConfigurationError{Resource: "prompt"}, KindConfiguration, false, false},
		{"timeout", &TimeoutError{}, KindTimeout, true, false},
		{"transport", &TransportError{StatusCode: 502}, KindTransport, true, false},
		{"malformed", &MalformedResponseError{}, KindMalformedResponse, true, false},
		{"upstream", &UpstreamError{Message: "x"}, KindUpstream, false, false},
		{"empty", &EmptyOutputError{}, KindEmptyOutput, false, true},
		{"unparsable", &UnparsableAnalysisError{Raw: "not json"}, KindUnparsableAnalysis, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("document abc: %w", tc.err)

			kind, ok := KindOf(wrapped)
			assert.Equal(t, ok, true)
			assert.Equal(t, kind, tc.kind)
			assert.Equal(t, kind.Infrastructure(), tc.infrastructure)
			assert.Equal(t, kind.ModelQuality(), tc.modelQuality)
		})
	}
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.Equal(t, ok, false)

	_, ok = KindOf(nil)
	assert.Equal(t, ok, false)
}

func TestTransportError_Retryable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{0, true},
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			err := &TransportError{StatusCode: tc.status}
			assert.Equal(t, err.Retryable(), tc.want)
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, KindUnparsableAnalysis.String(), "unparsable_analysis")
	assert.Equal(t, KindTimeout.String(), "timeout")
	assert.Equal(t, ErrorKind(0).String(), "unknown")
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &UnparsableAnalysisError{Raw: "{", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
}
