package ai

import (
	"context"
	"time"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/metrics"
	pkgai "github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"go.uber.org/zap"
)

// Completer sends one completion request
type Completer interface {
	Send(ctx context.Context, req pkgai.CompletionRequest) (*pkgai.CompletionResponse, error)
}

// Analyzer runs the analysis pipeline for one transcript: compose, send, normalize
type Analyzer struct {
	composer *pkgai.Composer
	client   Completer
	parser   *Parser
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAnalyzer creates a new Analyzer. m may be nil.
func NewAnalyzer(composer *pkgai.Composer, client Completer, parser *Parser, m *metrics.Metrics, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = NewParser(logger)
	}
	return &Analyzer{
		composer: composer,
		client:   client,
		parser:   parser,
		metrics:  m,
		logger:   logger,
	}
}

// Analyze returns the analysis record for transcript. Failures are one of the
// pkg/ai error types and can be inspected with KindOf.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (*entities.AnalysisRecord, error) {
	req := a.composer.Compose(transcript)

	start := time.Now()
	resp, err := a.client.Send(ctx, req)
	a.metrics.RecordCompletion(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	record, err := a.parser.Normalize(resp)
	if err != nil {
		if kind, ok := pkgai.KindOf(err); ok && kind.ModelQuality() {
			a.logger.Warn("⚠️ Model output rejected",
				zap.String("kind", kind.String()),
				zap.Error(err))
		}
		return nil, err
	}

	return record, nil
}

// ValidateTranscript rejects blank transcripts and those shorter than minChars characters
func (a *Analyzer) ValidateTranscript(transcript string, minChars int) error {
	return a.parser.ValidateTranscriptLength(transcript, minChars)
}
