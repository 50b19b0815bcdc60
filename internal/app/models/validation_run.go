package models

import "time"

// RunStatus is the validation run state machine:
// pending -> processing -> {completed | failed}.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Progress checkpoints reported as run stages complete. Progress only moves
// forward within a run.
const (
	ProgressRecordsPersisted = 20
	ProgressRulesLoaded      = 40
	ProgressRulesEvaluated   = 80
	ProgressResultsPersisted = 100
)

// ValidationRun tracks one execution of the engine over one uploaded batch.
type ValidationRun struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	Status         RunStatus `json:"status" bson:"status"`
	Progress       int       `json:"progress" bson:"progress"`
	RecordCount    int       `json:"recordCount" bson:"recordCount"`
	FindingCount   int       `json:"findingCount" bson:"findingCount"`
	SkippedRules   []string  `json:"skippedRules,omitempty" bson:"skippedRules,omitempty"`
	PartialResults bool      `json:"partialResults" bson:"partialResults"`
	ErrorMessage   string    `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Terminal reports whether the run reached a terminal status.
func (r ValidationRun) Terminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
