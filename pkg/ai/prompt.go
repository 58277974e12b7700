package ai

import (
	"errors"
	"os"
	"strings"
)

const (
	// MaxTranscriptChars bounds the transcript sent to the model, counted in characters
	MaxTranscriptChars = 2500
	Temperature        = 0.3
	MaxTokens          = 800

	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the outbound chat completion payload
type CompletionRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

// LoadSystemInstruction reads the system instruction once at startup
func LoadSystemInstruction(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", &ConfigurationError{Resource: path, Err: err}
	}

	instruction := strings.TrimSpace(string(b))
	if instruction == "" {
		return "", &ConfigurationError{Resource: path, Err: errors.New("system instruction is empty")}
	}
	return instruction, nil
}

// Composer builds completion requests from a fixed instruction and a transcript
type Composer struct {
	model       string
	instruction string
}

// NewComposer creates a Composer for the given model and system instruction
func NewComposer(model, systemInstruction string) (*Composer, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, &ConfigurationError{Resource: "system instruction", Err: errors.New("system instruction is empty")}
	}
	return &Composer{model: model, instruction: systemInstruction}, nil
}

// Compose builds the request for one transcript. Temperature and token budget are fixed.
func (c *Composer) Compose(transcript string) CompletionRequest {
	return CompletionRequest{
		Model:       c.model,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Messages: []Message{
			{Role: RoleSystem, Content: c.instruction},
			{Role: RoleUser, Content: TruncateTranscript(transcript, MaxTranscriptChars)},
		},
	}
}

// TruncateTranscript keeps the first max characters of s. No attempt is made to
// cut on a word or sentence boundary.
func TruncateTranscript(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
