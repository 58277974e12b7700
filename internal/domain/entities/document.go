package entities

import "time"

// Folder is one meeting folder under the scanned root folder
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
}

// DocumentFile is a document found inside a meeting folder
type DocumentFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MeetingDocument identifies one meeting-notes document to analyze
type MeetingDocument struct {
	ParentFolderID string `json:"parent_folder_id"`
	FolderID       string `json:"folder_id"`
	FolderName     string `json:"folder_name"`
	DocumentID     string `json:"document_id"`
	DocumentName   string `json:"document_name"`
	DocumentURL    string `json:"document_url"`
}

// Outcome is the per-document result of a batch run
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
)

// BatchSummary aggregates the outcomes of one batch run
type BatchSummary struct {
	RunID        string         `json:"run_id"`
	Total        int            `json:"total"`
	Processed    int            `json:"processed"`
	Skipped      int            `json:"skipped"`
	Errors       int            `json:"errors"`
	ErrorsByKind map[string]int `json:"errors_by_kind"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// NewBatchSummary starts an empty summary for the given run
func NewBatchSummary(runID string, total int, startedAt time.Time) BatchSummary {
	return BatchSummary{
		RunID:        runID,
		Total:        total,
		ErrorsByKind: make(map[string]int),
		StartedAt:    startedAt,
	}
}

// Record counts one document outcome. kind is only used for errors.
func (s *BatchSummary) Record(outcome Outcome, kind string) {
	switch outcome {
	case OutcomeProcessed:
		s.Processed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeError:
		s.Errors++
		if s.ErrorsByKind == nil {
			s.ErrorsByKind = make(map[string]int)
		}
		s.ErrorsByKind[kind]++
	}
}
