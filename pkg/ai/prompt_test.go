package ai

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-playground/assert/v2"
)

func TestCompose_ShortTranscriptUnmodified(t *testing.T) {
	composer, err := NewComposer("gpt-4o-mini", "instruction")
	if err != nil {
		t.Fatalf("composer: %v", err)
	}

	for _, n := range []int{0, 1, 100, MaxTranscriptChars} {
		transcript := strings.Repeat("a", n)
		req := composer.Compose(transcript)

		assert.Equal(t, len(req.Messages), 2)
		assert.Equal(t, req.Messages[0], Message{Role: RoleSystem, Content: "instruction"})
		assert.Equal(t, req.Messages[1].Role, RoleUser)
		assert.Equal(t, req.Messages[1].Content, transcript)
	}
}

func TestCompose_FixedParameters(t *testing.T) {
	composer, _ := NewComposer("gpt-4o-mini", "instruction")
	req := composer.Compose("hola")

	assert.Equal(t, req.Model, "gpt-4o-mini")
	assert.Equal(t, req.Temperature, 0.3)
	assert.Equal(t, req.MaxTokens, 800)
}

func TestCompose_TruncatesLongTranscript(t *testing.T) {
	composer, _ := NewComposer("gpt-4o-mini", "instruction")
	transcript := strings.Repeat("x", 2400) + strings.Repeat("y", 300)

	req := composer.Compose(transcript)

	assert.Equal(t, req.Messages[1].Content, transcript[:MaxTranscriptChars])
	// caller's copy is untouched
	assert.Equal(t, len(transcript), 2700)
}

func TestTruncateTranscript_CountsCharacters(t *testing.T) {
	transcript := strings.Repeat("ñ", 2600)

	got := TruncateTranscript(transcript, MaxTranscriptChars)

	assert.Equal(t, utf8.RuneCountInString(got), MaxTranscriptChars)
	assert.Equal(t, got, strings.Repeat("ñ", MaxTranscriptChars))
	assert.Equal(t, utf8.ValidString(got), true)
}

func TestTruncateTranscript_MultiByteUnderLimit(t *testing.T) {
	// 2000 characters but 4000 bytes
	transcript := strings.Repeat("é", 2000)
	assert.Equal(t, TruncateTranscript(transcript, MaxTranscriptChars), transcript)
}

func TestNewComposer_BlankInstruction(t *testing.T) {
	_, err := NewComposer("gpt-4o-mini", "  \n")

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestLoadSystemInstruction(t *testing.T) {
	dir := t.TempDir()

	t.Run("trims content", func(t *testing.T) {
		path := filepath.Join(dir, "prompt.txt")
		if err := os.WriteFile(path, []byte("\n  Analiza la reunión.  \n"), 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := LoadSystemInstruction(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assert.Equal(t, got, "Analiza la reunión.")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSystemInstruction(filepath.Join(dir, "missing.txt"))
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("expected *ConfigurationError, got %v", err)
		}
		assert.Equal(t, ce.Resource, filepath.Join(dir, "missing.txt"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected the cause to be preserved, got %v", err)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		path := filepath.Join(dir, "blank.txt")
		if err := os.WriteFile(path, []byte("   \n\t"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadSystemInstruction(path)
		kind, ok := KindOf(err)
		assert.Equal(t, ok, true)
		assert.Equal(t, kind, KindConfiguration)
	})
}
