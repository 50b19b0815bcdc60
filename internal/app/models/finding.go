package models

import "time"

// Severity classifies a finding.
type Severity string

const (
	SeverityError        Severity = "error"
	SeverityOptimization Severity = "optimization"
	SeverityInfo         Severity = "info"
)

// Finding is one output of a rule handler: a violation or an optimization
// opportunity anchored on a representative record.
//
// RuleData and the record ids are the only places PHI may appear before
// redaction. Top-level "patient"/"patientId" and "doctor"/"doctorInfo" keys in
// RuleData are redacted on output; "idRamq", amounts, counts and dates pass
// through unchanged.
type Finding struct {
	ID              string                 `json:"id,omitempty" bson:"_id,omitempty"`
	RunID           string                 `json:"runId" bson:"runId"`
	RuleID          string                 `json:"ruleId" bson:"ruleId"`
	Severity        Severity               `json:"severity" bson:"severity"`
	Category        RuleCategory           `json:"category" bson:"category"`
	Message         string                 `json:"message" bson:"message"`
	Solution        string                 `json:"solution,omitempty" bson:"solution,omitempty"`
	BillingRecordID string                 `json:"billingRecordId" bson:"billingRecordId"`
	AffectedRecords []string               `json:"affectedRecords" bson:"affectedRecords"`
	RuleData        map[string]interface{} `json:"ruleData,omitempty" bson:"ruleData,omitempty"`
	CreatedAt       time.Time              `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
