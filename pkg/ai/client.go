package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	"go.uber.org/zap"
)

const maxErrorBodyBytes = 512

// CompletionResponse is the raw reply of the completion endpoint
type CompletionResponse struct {
	StatusCode int
	Body       []byte
}

// CompletionClient sends chat completion requests to an OpenAI-compatible API.
// It is safe for concurrent use.
type CompletionClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	verbose bool
	client  *http.Client
	logger  *zap.Logger
}

// NewCompletionClient creates a client from the LLM configuration
func NewCompletionClient(cfg config.LLMConfig, logger *zap.Logger) *CompletionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CompletionClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		verbose: cfg.Verbose,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Timeout returns the hard per-request timeout
func (c *CompletionClient) Timeout() time.Duration {
	return c.timeout
}

// Send performs exactly one POST to {base}/chat/completions. A request that does
// not complete within the timeout fails with *TimeoutError; every other failure,
// including a non-2xx status, fails with *TransportError.
func (c *CompletionClient) Send(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, start, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, start, err)
	}

	if c.verbose {
		c.logger.Info("📥 Completion response body",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	return &CompletionResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// classify maps a failed round trip to the pipeline taxonomy. A deadline set by
// the caller's context is reported with the caller's budget, not the client timeout.
func (c *CompletionClient) classify(ctx context.Context, start time.Time, err error) error {
	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		budget := c.timeout
		if deadline, ok := ctx.Deadline(); ok && deadline.Sub(start) < budget {
			budget = deadline.Sub(start)
		}
		return &TimeoutError{Timeout: budget, Err: err}
	case ctxErr != nil:
		return &TransportError{Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: c.timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Timeout: c.timeout, Err: err}
	}
	return &TransportError{Err: err}
}
