package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"google.golang.org/api/googleapi"
)

func TestBegin(t *testing.T) {
	ctx, cancel := Begin(context.Background(), "run-1", "doc-1", time.Minute)
	defer cancel()

	assert.Equal(t, GetRunID(ctx), "run-1")
	assert.Equal(t, GetDocumentID(ctx), "doc-1")
	assert.Equal(t, GetRetryAttempt(ctx), 0)

	deadline, ok := ctx.Deadline()
	assert.Equal(t, ok, true)
	if time.Until(deadline) > time.Minute {
		t.Fatalf("deadline too far: %v", deadline)
	}

	ctx = SetRetryAttempt(ctx, 2)
	assert.Equal(t, GetRetryAttempt(ctx), 2)
	assert.Equal(t, len(Fields(ctx)), 4)
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, GetRunID(ctx), "")
	assert.Equal(t, GetDocumentID(ctx), "")
	assert.Equal(t, GetRetryAttempt(ctx), 0)
	assert.Equal(t, len(Fields(ctx)), 3)
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", &ai.TimeoutError{}, true},
		{"transport", fmt.Errorf("doc: %w", &ai.TransportError{StatusCode: 503}), true},
		{"transport no response", &ai.TransportError{Err: errors.New("connection refused")}, true},
		{"transport 429", &ai.TransportError{StatusCode: 429}, true},
		{"transport 401", fmt.Errorf("doc: %w", &ai.TransportError{StatusCode: 401}), false},
		{"transport 400", &ai.TransportError{StatusCode: 400, Err: errors.New("bad gateway model")}, false},
		{"malformed", &ai.MalformedResponseError{}, true},
		{"upstream", &ai.UpstreamError{Message: "rate limit"}, false},
		{"unparsable", &ai.UnparsableAnalysisError{Raw: "x"}, false},
		{"empty", &ai.EmptyOutputError{}, false},
		{"google 429", &googleapi.Error{Code: 429}, true},
		{"google 503", fmt.Errorf("read: %w", &googleapi.Error{Code: 503}), true},
		{"google 404", &googleapi.Error{Code: 404, Message: "connection reset"}, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("document not found"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, IsRetryableError(tc.err), tc.want)
		})
	}
}
