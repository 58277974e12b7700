package analysis

import "time"

// RunResponse represents the result of one batch run
type RunResponse struct {
	RunID        string         `json:"run_id"`
	Total        int            `json:"total"`
	Processed    int            `json:"processed"`
	Skipped      int            `json:"skipped"`
	Errors       int            `json:"errors"`
	ErrorsByKind map[string]int `json:"errors_by_kind"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	DurationMS   int64          `json:"duration_ms"`
}
