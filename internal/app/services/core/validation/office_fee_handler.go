package validation

import (
	"fmt"

	"facturation-service/internal/app/models"
)

// ValidateOfficeFee checks per-doctor-per-day office fee codes against their
// minimum patient counts. Patients seen that day are classified as walk-in
// when one of the configured walk-in context tokens is present, registered
// otherwise; each population is compared against its own threshold. A fee
// billed without the required count yields an error recommending the
// lower-threshold code.
func ValidateOfficeFee(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.OfficeFee
	if cond == nil {
		return nil, fmt.Errorf("office-fee rule %s has no decoded condition", rule.ID)
	}
	if len(cond.Codes) == 0 {
		return nil, nil
	}

	groups := make(map[string][]models.BillingRecord)
	for _, record := range records {
		key := doctorDayKey(record)
		groups[key] = append(groups[key], record)
	}

	var findings []models.Finding
	for _, key := range sortedGroupKeys(groups) {
		group := groups[key]

		var feeRecords []models.BillingRecord
		registered := make(map[string]bool)
		walkIn := make(map[string]bool)
		for _, record := range group {
			if _, isFee := cond.Codes[record.Code]; isFee {
				feeRecords = append(feeRecords, record)
				continue
			}
			if record.Patient == "" {
				continue
			}
			if hasAnyToken(record, cond.WalkInContexts) {
				walkIn[record.Patient] = true
			} else {
				registered[record.Patient] = true
			}
		}
		if len(feeRecords) == 0 {
			continue
		}

		for _, fee := range sortedByDate(feeRecords) {
			codeRule := cond.Codes[fee.Code]
			if len(registered) >= codeRule.RegisteredMin {
				continue
			}
			if codeRule.WalkInMin > 0 && len(walkIn) >= codeRule.WalkInMin {
				continue
			}

			solution := "Verify the patient count for this day before billing the office fee"
			if codeRule.AlternativeCode != "" {
				solution = fmt.Sprintf("Bill code %s instead, which matches the lower patient count", codeRule.AlternativeCode)
			}
			findings = append(findings, models.Finding{
				RunID:           runID,
				RuleID:          rule.ID,
				Severity:        models.SeverityError,
				Category:        models.CategoryOfficeFee,
				Message:         fmt.Sprintf("Office fee code %s billed on %s requires at least %d registered patients (%d found) or %d walk-in patients (%d found)", fee.Code, fee.ServiceDay(), codeRule.RegisteredMin, len(registered), codeRule.WalkInMin, len(walkIn)),
				Solution:        solution,
				BillingRecordID: fee.ID,
				AffectedRecords: recordIDs(group),
				RuleData: map[string]interface{}{
					"doctor":          fee.DoctorInfo,
					"date":            fee.ServiceDay(),
					"code":            fee.Code,
					"registeredCount": len(registered),
					"walkInCount":     len(walkIn),
					"registeredMin":   codeRule.RegisteredMin,
					"walkInMin":       codeRule.WalkInMin,
				},
			})
		}
	}
	return findings, nil
}
