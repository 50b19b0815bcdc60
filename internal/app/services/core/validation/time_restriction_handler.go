package validation

import (
	"fmt"

	"facturation-service/internal/app/models"
)

// ValidateTimeRestriction enforces a minimum interval, in days, between two
// billings of the same code for the same patient. Every consecutive pair
// below the threshold yields one error citing both dates and the actual gap,
// anchored on the earlier record of the pair.
func ValidateTimeRestriction(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.TimeRestriction
	if cond == nil {
		return nil, fmt.Errorf("time-restriction rule %s has no decoded condition", rule.ID)
	}

	minDays := cond.MinIntervalDays
	if rule.Threshold != nil {
		minDays = int(*rule.Threshold)
	}
	if cond.Code == "" || minDays <= 0 {
		return nil, nil
	}

	byPatient := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if record.Code != cond.Code || record.Patient == "" {
			continue
		}
		byPatient[record.Patient] = append(byPatient[record.Patient], record)
	}

	var findings []models.Finding
	for _, patient := range sortedGroupKeys(byPatient) {
		ordered := sortedByDate(byPatient[patient])
		for i := 1; i < len(ordered); i++ {
			previous, current := ordered[i-1], ordered[i]
			gapDays := int(current.DateService.Sub(previous.DateService).Hours() / 24)
			if gapDays >= minDays {
				continue
			}
			findings = append(findings, models.Finding{
				RunID:           runID,
				RuleID:          rule.ID,
				Severity:        models.SeverityError,
				Category:        models.CategoryTimeRestriction,
				Message:         fmt.Sprintf("Code %s billed on %s and again on %s: %d day(s) apart, minimum interval is %d day(s)", cond.Code, previous.ServiceDay(), current.ServiceDay(), gapDays, minDays),
				Solution:        fmt.Sprintf("Wait at least %d day(s) between billings of code %s", minDays, cond.Code),
				BillingRecordID: previous.ID,
				AffectedRecords: []string{previous.ID, current.ID},
				RuleData: map[string]interface{}{
					"patient":         patient,
					"code":            cond.Code,
					"firstDate":       previous.ServiceDay(),
					"secondDate":      current.ServiceDay(),
					"gapDays":         gapDays,
					"minIntervalDays": minDays,
				},
			})
		}
	}
	return findings, nil
}
