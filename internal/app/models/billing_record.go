package models

import (
	"strings"
	"time"
)

// BillingRecord is one parsed line-item of an uploaded batch. Records are
// created once when a run is submitted and are immutable afterwards; they are
// removed together with their run.
//
// Patient and DoctorInfo are the only PHI-bearing fields. IDRamq and Facture
// are administrative billing identifiers and are never redacted.
type BillingRecord struct {
	ID                  string    `json:"id,omitempty" bson:"_id,omitempty"`
	RunID               string    `json:"runId" bson:"runId"`
	RecordNumber        int       `json:"recordNumber" bson:"recordNumber"`
	Facture             string    `json:"facture" bson:"facture"`
	IDRamq              string    `json:"idRamq" bson:"idRamq"`
	DateService         time.Time `json:"dateService" bson:"dateService"`
	Debut               string    `json:"debut,omitempty" bson:"debut,omitempty"`
	Fin                 string    `json:"fin,omitempty" bson:"fin,omitempty"`
	LieuPratique        string    `json:"lieuPratique" bson:"lieuPratique"`
	SecteurActivite     string    `json:"secteurActivite,omitempty" bson:"secteurActivite,omitempty"`
	Diagnostic          string    `json:"diagnostic,omitempty" bson:"diagnostic,omitempty"`
	Code                string    `json:"code" bson:"code"`
	Unites              string    `json:"unites,omitempty" bson:"unites,omitempty"`
	Role                string    `json:"role,omitempty" bson:"role,omitempty"`
	ElementContexte     string    `json:"elementContexte,omitempty" bson:"elementContexte,omitempty"`
	MontantPreliminaire float64   `json:"montantPreliminaire" bson:"montantPreliminaire"`
	MontantPaye         float64   `json:"montantPaye" bson:"montantPaye"`
	DoctorInfo          string    `json:"doctorInfo,omitempty" bson:"doctorInfo,omitempty"`
	Patient             string    `json:"patient,omitempty" bson:"patient,omitempty"`
}

// ContextTokens splits ElementContexte into trimmed, non-empty tokens.
// "85,AR" yields ["85" "AR"]; an empty string yields nil.
func (r BillingRecord) ContextTokens() []string {
	if strings.TrimSpace(r.ElementContexte) == "" {
		return nil
	}
	parts := strings.Split(r.ElementContexte, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// HasContextToken reports whether one of the record's context tokens equals
// the given token, case-insensitively. Matching is exact per token, never a
// substring match: "STAR" does not match "AR".
func (r BillingRecord) HasContextToken(token string) bool {
	for _, t := range r.ContextTokens() {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// ServiceYear is the calendar year of DateService, the grouping year for all
// annual rules.
func (r BillingRecord) ServiceYear() int {
	return r.DateService.Year()
}

// ServiceDay is the calendar day of DateService formatted as 2006-01-02,
// used as part of per-doctor-per-day grouping keys.
func (r BillingRecord) ServiceDay() string {
	return r.DateService.Format("2006-01-02")
}
