package validation

import (
	"fmt"
	"strings"

	"facturation-service/internal/app/models"
)

// ValidateAnnualLimit enforces once-per-patient-per-year billing for codes
// whose catalog leaf description matches one of the rule's patterns. Every
// record after the first (by date) in a patient-year group is an error; the
// remediation cites the date of the first occurrence.
func ValidateAnnualLimit(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.AnnualLimit
	if cond == nil {
		return nil, fmt.Errorf("annual-limit rule %s has no decoded condition", rule.ID)
	}
	if len(cond.LeafPatterns) == 0 {
		return nil, nil
	}

	groups := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if record.Patient == "" || !leafMatches(refs.CodeLeaf[record.Code], cond.LeafPatterns) {
			continue
		}
		key := patientYearKey(record)
		groups[key] = append(groups[key], record)
	}

	var findings []models.Finding
	for _, key := range sortedGroupKeys(groups) {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		ordered := sortedByDate(group)
		first := ordered[0]
		for _, duplicate := range ordered[1:] {
			findings = append(findings, models.Finding{
				RunID:           runID,
				RuleID:          rule.ID,
				Severity:        models.SeverityError,
				Category:        models.CategoryAnnualLimit,
				Message:         fmt.Sprintf("Code %s billed on %s but already billed on %s for the same patient in %d; this code is limited to once per year", duplicate.Code, duplicate.ServiceDay(), first.ServiceDay(), first.ServiceYear()),
				Solution:        fmt.Sprintf("Remove this line; the code was already billed on %s", first.ServiceDay()),
				BillingRecordID: duplicate.ID,
				AffectedRecords: recordIDs(ordered),
				RuleData: map[string]interface{}{
					"patient":       duplicate.Patient,
					"year":          first.ServiceYear(),
					"code":          duplicate.Code,
					"firstDate":     first.ServiceDay(),
					"duplicateDate": duplicate.ServiceDay(),
					"totalCount":    len(ordered),
				},
			})
		}
	}
	return findings, nil
}

// leafMatches reports whether the catalog leaf description contains any of
// the configured patterns, case-insensitively. Records whose code is absent
// from the catalog never match.
func leafMatches(leaf string, patterns []string) bool {
	if leaf == "" {
		return false
	}
	lower := strings.ToLower(leaf)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
