package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"go.uber.org/zap"
)

const (
	defaultUpstreamMessage = "unknown upstream error"
	noChoicesMessage       = "no choices returned"
	finishReasonLength     = "length"
)

// Parser turns raw completion responses into analysis records
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new Parser instance
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

type completionChoice struct {
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Content string `json:"content"`
	} `json:"message"`
}

type completionEnvelope struct {
	Error   json.RawMessage
	Choices []completionChoice
}

// Normalize validates a completion response and decodes the model's answer.
// The transport envelope and the model-generated text are decoded separately so
// that API failures and model-output failures surface as different error kinds.
func (p *Parser) Normalize(resp *pkgai.CompletionResponse) (*entities.AnalysisRecord, error) {
	if resp == nil {
		return nil, &pkgai.MalformedResponseError{Err: errors.New("no response body")}
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	if msg, failed := upstreamErrorMessage(env.Error); failed {
		return nil, &pkgai.UpstreamError{Message: msg}
	}

	if len(env.Choices) == 0 {
		return nil, &pkgai.UpstreamError{Message: noChoicesMessage}
	}

	choice := env.Choices[0]
	if choice.FinishReason == finishReasonLength {
		p.logger.Warn("⚠️ Completion was truncated by the token limit, attempting to parse anyway",
			zap.String("finish_reason", choice.FinishReason))
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, &pkgai.EmptyOutputError{FinishReason: choice.FinishReason}
	}

	return decodeAnalysis(content)
}

// decodeEnvelope is the first decode: the API's own response object
func decodeEnvelope(body []byte) (*completionEnvelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &pkgai.MalformedResponseError{Body: body, Err: err}
	}
	if fields == nil {
		return nil, &pkgai.MalformedResponseError{Body: body, Err: errors.New("response is not a JSON object")}
	}

	env := &completionEnvelope{Error: fields["error"]}
	if raw, ok := fields["choices"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Choices); err != nil {
			return nil, &pkgai.MalformedResponseError{Body: body, Err: fmt.Errorf("invalid choices: %w", err)}
		}
	}
	return env, nil
}

// upstreamErrorMessage reports whether the envelope carries an error indicator.
// Both {"error":{"message":"..."}} and {"error":"..."} are recognised.
func upstreamErrorMessage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || isNull(raw) || bytes.Equal(bytes.TrimSpace(raw), []byte("false")) {
		return "", false
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return s, true
	}

	return defaultUpstreamMessage, true
}

// decodeAnalysis is the second decode: the text the model generated
func decodeAnalysis(content string) (*entities.AnalysisRecord, error) {
	var record entities.AnalysisRecord
	if err := json.Unmarshal([]byte(extractJSON(content)), &record); err != nil {
		return nil, &pkgai.UnparsableAnalysisError{Raw: content, Err: err}
	}
	return &record, nil
}

// extractJSON removes one surrounding markdown code fence, if present
func extractJSON(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}

	body := strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		// drop the info string, e.g. ```json
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ValidateTranscriptLength checks if transcript meets the minimum length, counted in characters
func (p *Parser) ValidateTranscriptLength(transcript string, minChars int) error {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return fmt.Errorf("transcript is empty")
	}

	if n := utf8.RuneCountInString(trimmed); n < minChars {
		return fmt.Errorf("transcript too short: %d characters (minimum: %d)", n, minChars)
	}
	return nil
}
