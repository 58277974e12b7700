package analysis

// AnalyzeRequest represents the request to analyze one transcript
type AnalyzeRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}
