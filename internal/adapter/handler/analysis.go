package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/errors"
	analysisDTO "github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	pkgvalidator "github.com/johnquangdev/meeting-analyzer/pkg/validator"
)

// TranscriptAnalyzer analyzes a single transcript
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, transcript string) (*entities.AnalysisRecord, error)
}

// BatchRunner runs one scan-and-analyze pass over the meetings folder
type BatchRunner interface {
	Run(ctx context.Context) (entities.BatchSummary, error)
}

// Analysis handles transcript analysis and batch run endpoints
type Analysis struct {
	analyzer TranscriptAnalyzer
	runner   BatchRunner
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler. runner may be nil when Drive is not configured.
func NewAnalysisHandler(analyzer TranscriptAnalyzer, runner BatchRunner, logger *zap.Logger) *Analysis {
	return &Analysis{analyzer: analyzer, runner: runner, logger: logger}
}

// Analyze returns the analysis record for one transcript
// @Summary      Analyze transcript
// @Description  Runs the analysis pipeline on the given meeting transcript
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.AnalyzeRequest  true  "Transcript to analyze"
// @Success      200      {object}  map[string]interface{}   "Analysis record"
// @Failure      400      {object}  map[string]interface{}   "Missing transcript"
// @Failure      422      {object}  map[string]interface{}   "Model output could not be used"
// @Failure      502      {object}  map[string]interface{}   "Completion service failed"
// @Failure      504      {object}  map[string]interface{}   "Completion request timed out"
// @Router       /analyses [post]
func (h *Analysis) Analyze(c echo.Context) error {
	var req analysisDTO.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		appErr := errors.ErrInvalidArgument("transcript is required")
		for field, tag := range pkgvalidator.FieldErrors(err) {
			appErr = appErr.WithDetail(field, tag)
		}
		return HandleError(h.logger, c, appErr)
	}

	record, err := h.analyzer.Analyze(c.Request().Context(), req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrAIAnalysis(err))
	}

	return HandleSuccess(h.logger, c, record)
}

// TriggerRun runs one batch pass synchronously and returns its summary
// @Summary      Trigger batch run
// @Description  Scans the configured Drive folder and analyzes every pending notes document
// @Tags         Runs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analysis.RunResponse     "Run summary"
// @Failure      400  {object}  map[string]interface{}  "Drive folder not configured"
// @Failure      502  {object}  map[string]interface{}  "Drive request failed"
// @Router       /runs [post]
func (h *Analysis) TriggerRun(c echo.Context) error {
	if h.runner == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("batch runs are not configured"))
	}

	summary, err := h.runner.Run(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToRunResponse(summary))
}
