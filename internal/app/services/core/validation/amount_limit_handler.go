package validation

import (
	"fmt"

	"facturation-service/internal/app/models"
)

// ValidateAmountLimit sums a configured amount field over a grouping key
// (doctor per day by default) and flags groups whose total exceeds the rule's
// maximum. One finding per violating group, anchored on the earliest record.
func ValidateAmountLimit(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.AmountLimit
	if cond == nil {
		return nil, fmt.Errorf("amount-limit rule %s has no decoded condition", rule.ID)
	}

	maxAmount := cond.MaxAmount
	if rule.Threshold != nil {
		maxAmount = *rule.Threshold
	}
	if maxAmount <= 0 {
		return nil, nil
	}

	groupBy := cond.GroupBy
	if groupBy == "" {
		groupBy = models.GroupByDoctorDay
	}

	groups := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if len(cond.Codes) > 0 && !containsString(cond.Codes, record.Code) {
			continue
		}
		var key string
		switch groupBy {
		case models.GroupByDoctorDay:
			key = doctorDayKey(record)
		case models.GroupByPatientYear:
			key = patientYearKey(record)
		default:
			return nil, fmt.Errorf("amount-limit rule %s has unknown grouping %q", rule.ID, groupBy)
		}
		groups[key] = append(groups[key], record)
	}

	var findings []models.Finding
	for _, key := range sortedGroupKeys(groups) {
		group := groups[key]

		total := 0.0
		for _, record := range group {
			amount, err := amountOf(record, cond.AmountField)
			if err != nil {
				return nil, fmt.Errorf("amount-limit rule %s: %w", rule.ID, err)
			}
			total += amount
		}
		if total <= maxAmount {
			continue
		}

		ordered := sortedByDate(group)
		earliest := ordered[0]
		findings = append(findings, models.Finding{
			RunID:           runID,
			RuleID:          rule.ID,
			Severity:        models.SeverityError,
			Category:        models.CategoryAmountLimit,
			Message:         fmt.Sprintf("Total %s of %.2f$ starting %s exceeds the maximum of %.2f$", cond.AmountField, total, earliest.ServiceDay(), maxAmount),
			Solution:        "Review the billed amounts in this group against the daily maximum",
			BillingRecordID: earliest.ID,
			AffectedRecords: recordIDs(ordered),
			RuleData: map[string]interface{}{
				"doctor":      earliest.DoctorInfo,
				"date":        earliest.ServiceDay(),
				"amountField": cond.AmountField,
				"totalAmount": total,
				"maxAmount":   maxAmount,
				"recordCount": len(ordered),
			},
		})
	}
	return findings, nil
}

func amountOf(record models.BillingRecord, field string) (float64, error) {
	switch field {
	case "", "montantPreliminaire":
		return record.MontantPreliminaire, nil
	case "montantPaye":
		return record.MontantPaye, nil
	default:
		return 0, fmt.Errorf("unknown amount field %q", field)
	}
}
