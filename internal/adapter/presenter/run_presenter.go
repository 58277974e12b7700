package presenter

import (
	analysisDTO "github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// ToRunResponse converts a BatchSummary to the RunResponse DTO
func ToRunResponse(s entities.BatchSummary) *analysisDTO.RunResponse {
	errorsByKind := s.ErrorsByKind
	if errorsByKind == nil {
		errorsByKind = map[string]int{}
	}

	return &analysisDTO.RunResponse{
		RunID:        s.RunID,
		Total:        s.Total,
		Processed:    s.Processed,
		Skipped:      s.Skipped,
		Errors:       s.Errors,
		ErrorsByKind: errorsByKind,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		DurationMS:   s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	}
}
