package validation

import (
	"fmt"
	"sort"
	"strings"

	"facturation-service/internal/app/models"
)

// ValidateProhibition flags invoices that combine codes from a mutually
// exclusive set. One finding is emitted per violating invoice, anchored on the
// earliest conflicting record.
func ValidateProhibition(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.Prohibition
	if cond == nil {
		return nil, fmt.Errorf("prohibition rule %s has no decoded condition", rule.ID)
	}
	if len(cond.Codes) == 0 {
		return nil, nil
	}

	byInvoice := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if record.Facture == "" || !containsString(cond.Codes, record.Code) {
			continue
		}
		byInvoice[record.Facture] = append(byInvoice[record.Facture], record)
	}

	var findings []models.Finding
	for _, invoice := range sortedGroupKeys(byInvoice) {
		group := byInvoice[invoice]
		if len(group) < 2 {
			continue
		}

		codes := make(map[string]bool)
		for _, record := range group {
			codes[record.Code] = true
		}
		conflicting := make([]string, 0, len(codes))
		for code := range codes {
			conflicting = append(conflicting, code)
		}
		sort.Strings(conflicting)

		ordered := sortedByDate(group)
		findings = append(findings, models.Finding{
			RunID:           runID,
			RuleID:          rule.ID,
			Severity:        models.SeverityError,
			Category:        models.CategoryProhibition,
			Message:         fmt.Sprintf("Invoice %s combines prohibited codes %s", invoice, strings.Join(conflicting, ", ")),
			Solution:        "Keep only one of the mutually exclusive codes on this invoice",
			BillingRecordID: ordered[0].ID,
			AffectedRecords: recordIDs(ordered),
			RuleData: map[string]interface{}{
				"facture": invoice,
				"idRamq":  ordered[0].IDRamq,
				"codes":   conflicting,
			},
		})
	}
	return findings, nil
}
