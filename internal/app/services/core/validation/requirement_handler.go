package validation

import (
	"fmt"
	"strings"

	"facturation-service/internal/app/models"
)

// ValidateRequirement flags billings of a code that lack every one of the
// rule's required context tokens in elementContexte.
func ValidateRequirement(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.Requirement
	if cond == nil {
		return nil, fmt.Errorf("requirement rule %s has no decoded condition", rule.ID)
	}
	if cond.Code == "" || len(cond.RequiredContexts) == 0 {
		return nil, nil
	}

	var findings []models.Finding
	for _, record := range records {
		if record.Code != cond.Code {
			continue
		}
		if hasAnyToken(record, cond.RequiredContexts) {
			continue
		}
		findings = append(findings, models.Finding{
			RunID:           runID,
			RuleID:          rule.ID,
			Severity:        models.SeverityError,
			Category:        models.CategoryRequirement,
			Message:         fmt.Sprintf("Code %s billed on %s without any of the required context elements: %s", cond.Code, record.ServiceDay(), strings.Join(cond.RequiredContexts, ", ")),
			Solution:        fmt.Sprintf("Add one of the context elements %s to this line", strings.Join(cond.RequiredContexts, ", ")),
			BillingRecordID: record.ID,
			AffectedRecords: []string{record.ID},
			RuleData: map[string]interface{}{
				"code":             cond.Code,
				"date":             record.ServiceDay(),
				"idRamq":           record.IDRamq,
				"requiredContexts": cond.RequiredContexts,
				"elementContexte":  record.ElementContexte,
			},
		})
	}
	return findings, nil
}
