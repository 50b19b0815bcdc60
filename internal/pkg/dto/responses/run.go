package responses

import "facturation-service/internal/app/models"

type SubmitRun struct {
	RunID       string           `json:"runId"`
	Status      models.RunStatus `json:"status"`
	RecordCount int              `json:"recordCount"`
}

type Run struct {
	RunID          string           `json:"runId"`
	Status         models.RunStatus `json:"status"`
	Progress       int              `json:"progress"`
	RecordCount    int              `json:"recordCount"`
	FindingCount   int              `json:"findingCount"`
	SkippedRules   []string         `json:"skippedRules,omitempty"`
	PartialResults bool             `json:"partialResults"`
	ErrorMessage   string           `json:"errorMessage,omitempty"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}
