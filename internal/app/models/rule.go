package models

import (
	"time"

	"github.com/goccy/go-json"
)

// RuleCategory selects which handler evaluates a rule.
type RuleCategory string

const (
	CategoryOfficeFee       RuleCategory = "office_fee"
	CategoryProhibition     RuleCategory = "prohibition"
	CategoryTimeRestriction RuleCategory = "time_restriction"
	CategoryRequirement     RuleCategory = "requirement"
	CategoryAnnualLimit     RuleCategory = "annual_limit"
	CategoryAnnualForfait   RuleCategory = "annual_forfait"
	CategoryAmountLimit     RuleCategory = "amount_limit"
)

// RuleDefinition is one compliance rule, loaded read-only per run. A disabled
// rule produces no findings. Condition is persisted as a raw JSON payload and
// decoded into the category's typed struct when rules are loaded, so handlers
// never re-parse raw payloads.
type RuleDefinition struct {
	ID           string          `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string          `json:"name" bson:"name"`
	Category     RuleCategory    `json:"category" bson:"category"`
	RawCondition json.RawMessage `json:"condition" bson:"condition"`
	Threshold    *float64        `json:"threshold,omitempty" bson:"threshold,omitempty"`
	Enabled      bool            `json:"enabled" bson:"enabled"`
	Severity     Severity        `json:"severity" bson:"severity"`
	CreatedAt    time.Time       `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`

	// Condition holds the decoded payload. Exactly one of the typed pointers
	// below is set, matching Category.
	Condition RuleCondition `json:"-" bson:"-"`
}

// RuleCondition is the tagged union of per-category condition payloads.
type RuleCondition struct {
	OfficeFee       *OfficeFeeCondition
	Prohibition     *ProhibitionCondition
	TimeRestriction *TimeRestrictionCondition
	Requirement     *RequirementCondition
	AnnualLimit     *AnnualLimitCondition
	AnnualForfait   *AnnualForfaitCondition
	AmountLimit     *AmountLimitCondition
}

// OfficeFeeCodeRule holds the per-code patient-count thresholds of an
// office-fee rule and the lower-threshold code to recommend instead.
type OfficeFeeCodeRule struct {
	RegisteredMin   int    `json:"registeredMin"`
	WalkInMin       int    `json:"walkInMin"`
	AlternativeCode string `json:"alternativeCode,omitempty"`
}

type OfficeFeeCondition struct {
	Codes          map[string]OfficeFeeCodeRule `json:"codes"`
	WalkInContexts []string                     `json:"walkInContexts"`
}

type ProhibitionCondition struct {
	Codes []string `json:"codes"`
}

type TimeRestrictionCondition struct {
	Code            string `json:"code"`
	MinIntervalDays int    `json:"minIntervalDays"`
}

type RequirementCondition struct {
	Code             string   `json:"code"`
	RequiredContexts []string `json:"requiredContexts"`
}

type AnnualLimitCondition struct {
	LeafPatterns []string `json:"leafPatterns"`
}

type AnnualForfaitCondition struct {
	PrimaryCode      string   `json:"primaryCode"`
	VisitCodes       []string `json:"visitCodes"`
	VisitGroups      []string `json:"visitGroups"`
	ExcludedContexts []string `json:"excludedContexts"`
	MissedAmount     float64  `json:"missedAmount"`
}

type AmountLimitCondition struct {
	Codes       []string `json:"codes,omitempty"`
	AmountField string   `json:"amountField"`
	GroupBy     string   `json:"groupBy,omitempty"`
	MaxAmount   float64  `json:"maxAmount"`
}

// Amount-limit grouping keys.
const (
	GroupByDoctorDay   = "doctor_day"
	GroupByPatientYear = "patient_year"
)

// DecodeCondition parses RawCondition into the typed struct for the rule's
// category and stores it on Condition. An unknown category leaves Condition
// empty; the dispatcher skips such rules.
func (r *RuleDefinition) DecodeCondition() error {
	if len(r.RawCondition) == 0 {
		return nil
	}
	switch r.Category {
	case CategoryOfficeFee:
		cond := new(OfficeFeeCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.OfficeFee = cond
	case CategoryProhibition:
		cond := new(ProhibitionCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.Prohibition = cond
	case CategoryTimeRestriction:
		cond := new(TimeRestrictionCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.TimeRestriction = cond
	case CategoryRequirement:
		cond := new(RequirementCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.Requirement = cond
	case CategoryAnnualLimit:
		cond := new(AnnualLimitCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.AnnualLimit = cond
	case CategoryAnnualForfait:
		cond := new(AnnualForfaitCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.AnnualForfait = cond
	case CategoryAmountLimit:
		cond := new(AmountLimitCondition)
		if err := json.Unmarshal(r.RawCondition, cond); err != nil {
			return err
		}
		r.Condition.AmountLimit = cond
	}
	return nil
}
