package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	domainrepo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/external/gdrive"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/metrics"
	pkgai "github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	"github.com/johnquangdev/meeting-analyzer/pkg/jobcontext"
)

// kindOther labels failures that did not come from the analysis pipeline
const kindOther = "other"

// DocumentAnalyzer turns a transcript into an analysis record
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, transcript string) (*entities.AnalysisRecord, error)
	ValidateTranscript(transcript string, minChars int) error
}

// Options controls one batch run
type Options struct {
	FolderURL          string
	ProcessedFolderURL string
	DocumentPattern    string
	SectionTitle       string
	MinTranscriptChars int
	MaxRetries         uint64
	RetryInterval      time.Duration
	DocumentTimeout    time.Duration
}

// OptionsFromConfig collects the batch options from the Drive and Batch groups
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FolderURL:          cfg.Drive.FolderURL,
		ProcessedFolderURL: cfg.Drive.ProcessedFolderURL,
		DocumentPattern:    cfg.Drive.DocumentPattern,
		SectionTitle:       cfg.Drive.SectionTitle,
		MinTranscriptChars: cfg.Batch.MinTranscriptChars,
		MaxRetries:         cfg.Batch.MaxRetries,
		RetryInterval:      cfg.Batch.RetryInterval,
		DocumentTimeout:    cfg.Batch.DocumentTimeout,
	}
}

// Service scans the meetings folder and analyzes every pending notes document
type Service struct {
	store     domainrepo.DocumentStore
	analyzer  DocumentAnalyzer
	warehouse domainrepo.AnalysisRepository
	ledger    domainrepo.ProcessedLedger
	archive   domainrepo.OutputArchive
	metrics   *metrics.Metrics
	opts      Options
	logger    *zap.Logger

	now      func() time.Time
	newRunID func() string
	mu       sync.Mutex
}

// NewService creates the batch driver. archive and m may be nil.
func NewService(
	store domainrepo.DocumentStore,
	analyzer DocumentAnalyzer,
	warehouse domainrepo.AnalysisRepository,
	ledger domainrepo.ProcessedLedger,
	archive domainrepo.OutputArchive,
	m *metrics.Metrics,
	opts Options,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		analyzer:  analyzer,
		warehouse: warehouse,
		ledger:    ledger,
		archive:   archive,
		metrics:   m,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// Run scans the folder and processes what it found. Only a failed scan returns an error.
func (s *Service) Run(ctx context.Context) (entities.BatchSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.Scan(ctx)
	if err != nil {
		return entities.BatchSummary{}, err
	}

	summary := s.Process(ctx, docs)
	s.logger.Info("📊 Batch run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("total", summary.Total),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Any("errors_by_kind", summary.ErrorsByKind),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// Scan lists the meeting folders and finds the notes document in each of them
func (s *Service) Scan(ctx context.Context) ([]entities.MeetingDocument, error) {
	if s.opts.FolderURL == "" {
		return nil, appErrors.ErrInvalidArgument("drive folder URL is not configured")
	}
	rootID, ok := gdrive.ExtractFolderID(s.opts.FolderURL)
	if !ok {
		return nil, appErrors.ErrInvalidArgument("could not extract folder id from drive folder URL").
			WithDetail("folder_url", s.opts.FolderURL)
	}

	folders, err := s.store.ListMeetingFolders(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting folders: %w", err)
	}

	s.logger.Info("🔍 Scanning meeting folders",
		zap.String("root_folder_id", rootID),
		zap.Int("folders", len(folders)))

	var docs []entities.MeetingDocument
	for _, folder := range folders {
		file, err := s.store.FindDocument(ctx, folder.ID, s.opts.DocumentPattern)
		if err != nil {
			s.logger.Warn("⚠️ Failed to search folder",
				zap.String("folder_id", folder.ID),
				zap.String("folder_name", folder.Name),
				zap.Error(err))
			continue
		}
		if file == nil {
			s.logger.Debug("No notes document in folder",
				zap.String("folder_id", folder.ID),
				zap.String("folder_name", folder.Name))
			continue
		}

		docs = append(docs, entities.MeetingDocument{
			ParentFolderID: rootID,
			FolderID:       folder.ID,
			FolderName:     folder.Name,
			DocumentID:     file.ID,
			DocumentName:   file.Name,
			DocumentURL:    gdrive.DocumentURL(file.ID),
		})
	}

	s.logger.Info("📄 Documents found", zap.Int("count", len(docs)))
	return docs, nil
}

// Process analyzes every document in order. A failing document is counted and
// the run moves on to the next one.
func (s *Service) Process(ctx context.Context, docs []entities.MeetingDocument) entities.BatchSummary {
	summary := entities.NewBatchSummary(s.newRunID(), len(docs), s.now())

	processedFolderID := ""
	if s.opts.ProcessedFolderURL != "" {
		id, ok := gdrive.ExtractFolderID(s.opts.ProcessedFolderURL)
		if !ok {
			s.logger.Warn("⚠️ Invalid processed folder URL, folders will not be moved",
				zap.String("processed_folder_url", s.opts.ProcessedFolderURL))
		}
		processedFolderID = id
	}

	for _, doc := range docs {
		outcome, kind := s.processDocument(ctx, summary.RunID, doc, processedFolderID)
		summary.Record(outcome, kind)
		s.metrics.RecordDocument(string(outcome))
	}

	summary.FinishedAt = s.now()
	s.metrics.RecordRun(summary.FinishedAt)
	return summary
}

func (s *Service) processDocument(parent context.Context, runID string, doc entities.MeetingDocument, processedFolderID string) (entities.Outcome, string) {
	ctx, cancel := jobcontext.Begin(parent, runID, doc.DocumentID, s.opts.DocumentTimeout)
	defer cancel()

	logger := s.logger.With(
		zap.String("run_id", runID),
		zap.String("document_id", doc.DocumentID),
		zap.String("folder_name", doc.FolderName),
	)

	if s.alreadyProcessed(ctx, logger, doc.DocumentID) {
		logger.Info("⏭️ Document already processed")
		return entities.OutcomeSkipped, ""
	}

	var transcript string
	err := s.retry(ctx, "read document", func(ctx context.Context) error {
		text, err := s.store.ReadDocument(ctx, doc.DocumentID)
		transcript = text
		return err
	})
	if err != nil {
		logger.Error("❌ Failed to read document", zap.Error(err))
		return entities.OutcomeError, kindOther
	}

	if err := s.analyzer.ValidateTranscript(transcript, s.opts.MinTranscriptChars); err != nil {
		logger.Info("⏭️ Transcript skipped", zap.Error(err))
		return entities.OutcomeSkipped, ""
	}

	var record *entities.AnalysisRecord
	err = s.retry(ctx, "analyze", func(ctx context.Context) error {
		r, err := s.analyzer.Analyze(ctx, transcript)
		record = r
		return err
	})
	if err != nil {
		kind := kindOf(err)
		s.metrics.RecordAnalysisError(kind)
		s.archiveRejected(ctx, logger, doc.DocumentID, err)
		logger.Error("❌ Analysis failed", zap.String("kind", kind), zap.Error(err))
		return entities.OutcomeError, kind
	}

	pretty, err := record.PrettyJSON()
	if err != nil {
		logger.Error("❌ Failed to encode analysis", zap.Error(err))
		return entities.OutcomeError, kindOther
	}
	err = s.retry(ctx, "append section", func(ctx context.Context) error {
		return s.store.AppendSection(ctx, doc.DocumentID, s.opts.SectionTitle, pretty)
	})
	if err != nil {
		logger.Error("❌ Failed to append analysis", zap.Error(err))
		return entities.OutcomeError, kindOther
	}

	// Past this point the section is in the document: failures are warnings.
	// The warehouse row also marks the document as processed.
	s.saveAnalysis(ctx, logger, doc, record)
	if err := s.ledger.MarkProcessed(ctx, doc.DocumentID); err != nil {
		logger.Warn("⚠️ Failed to mark document as processed", zap.Error(err))
	}
	s.archiveRecord(ctx, logger, doc.DocumentID, record)
	if processedFolderID != "" {
		if err := s.store.MoveFile(ctx, doc.FolderID, doc.ParentFolderID, processedFolderID); err != nil {
			logger.Warn("⚠️ Failed to move meeting folder", zap.Error(err))
		}
	}

	logger.Info("✅ Document analyzed", jobcontext.Fields(ctx)...)
	return entities.OutcomeProcessed, ""
}

// alreadyProcessed checks the ledger first and then the warehouse. Lookup
// failures are logged and treated as not processed.
func (s *Service) alreadyProcessed(ctx context.Context, logger *zap.Logger, documentID string) bool {
	processed, err := s.ledger.IsProcessed(ctx, documentID)
	if err != nil {
		logger.Warn("⚠️ Ledger lookup failed", zap.Error(err))
	}
	if processed {
		return true
	}

	exists, err := s.warehouse.ExistsByDocumentID(ctx, documentID)
	if err != nil {
		logger.Warn("⚠️ Warehouse lookup failed", zap.Error(err))
		return false
	}
	return exists
}

// retry runs fn until it succeeds, fails with a non-retryable error or runs out of attempts.
// When the context ends between attempts the last attempt's error is kept in the chain.
func (s *Service) retry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempt := 0
	var lastErr error
	op := func() error {
		attemptCtx := jobcontext.SetRetryAttempt(ctx, attempt)
		attempt++

		err := fn(attemptCtx)
		lastErr = err
		if err == nil {
			return nil
		}
		if !jobcontext.IsRetryableError(err) {
			return backoff.Permanent(err)
		}

		s.logger.Warn("🔁 Retryable failure",
			append(jobcontext.Fields(attemptCtx),
				zap.String("operation", operation),
				zap.Error(err))...)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.opts.RetryInterval
	bo.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, s.opts.MaxRetries), ctx))
	if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr && lastErr != nil && lastErr != ctxErr {
		return fmt.Errorf("%s: %w after attempt %d: %w", operation, err, attempt, lastErr)
	}
	return err
}

func (s *Service) saveAnalysis(ctx context.Context, logger *zap.Logger, doc entities.MeetingDocument, record *entities.AnalysisRecord) {
	row, err := entities.NewMeetingAnalysis(record, doc, s.now())
	if err != nil {
		logger.Warn("⚠️ Failed to build warehouse row", zap.Error(err))
		return
	}
	if err := s.warehouse.Save(ctx, row); err != nil {
		logger.Warn("⚠️ Failed to save analysis", zap.Error(err))
	}
}

func (s *Service) archiveRejected(ctx context.Context, logger *zap.Logger, documentID string, err error) {
	if s.archive == nil {
		return
	}

	var raw string
	var unparsable *pkgai.UnparsableAnalysisError
	var upstream *pkgai.UpstreamError
	switch {
	case errors.As(err, &unparsable):
		raw = unparsable.Raw
	case errors.As(err, &upstream):
		raw = upstream.Message
	default:
		return
	}

	if archiveErr := s.archive.ArchiveRejectedOutput(ctx, documentID, raw, kindOf(err)); archiveErr != nil {
		logger.Warn("⚠️ Failed to archive rejected output", zap.Error(archiveErr))
	}
}

func (s *Service) archiveRecord(ctx context.Context, logger *zap.Logger, documentID string, record *entities.AnalysisRecord) {
	if s.archive == nil {
		return
	}

	b, err := record.MarshalJSON()
	if err != nil {
		logger.Warn("⚠️ Failed to encode analysis for archive", zap.Error(err))
		return
	}
	if err := s.archive.ArchiveAnalysis(ctx, documentID, b); err != nil {
		logger.Warn("⚠️ Failed to archive analysis", zap.Error(err))
	}
}

func kindOf(err error) string {
	if kind, ok := pkgai.KindOf(err); ok {
		return kind.String()
	}
	return kindOther
}
