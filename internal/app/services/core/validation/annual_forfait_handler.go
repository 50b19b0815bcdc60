package validation

import (
	"fmt"

	"facturation-service/internal/app/models"
)

// ValidateAnnualForfait evaluates the GMF-style annual forfait in two
// independent passes.
//
// Duplicate pass: the primary forfait code may be paid once per patient per
// calendar year. When a patient-year group holds more than one record and at
// least one paid record, every record after the first paid one (by date) is
// an error citing the first-paid date.
//
// Opportunity pass: patients with at least one qualifying visit at a
// GMF-flagged establishment in a year, and no primary-code record that year,
// yield one optimization finding anchored on the earliest visit, citing the
// visit count and the configured missed-revenue amount.
func ValidateAnnualForfait(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error) {
	cond := rule.Condition.AnnualForfait
	if cond == nil {
		return nil, fmt.Errorf("annual-forfait rule %s has no decoded condition", rule.ID)
	}
	if cond.PrimaryCode == "" {
		return nil, nil
	}

	findings := forfaitDuplicates(rule, cond, records, runID)
	findings = append(findings, forfaitOpportunities(rule, cond, records, refs, runID)...)
	return findings, nil
}

func forfaitDuplicates(rule models.RuleDefinition, cond *models.AnnualForfaitCondition, records []models.BillingRecord, runID string) []models.Finding {
	groups := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if record.Code != cond.PrimaryCode || record.Patient == "" {
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

		paidCount := 0
		for _, record := range group {
			if record.MontantPaye > 0 {
				paidCount++
			}
		}
		if paidCount == 0 {
			continue
		}

		ordered := sortedByDate(group)
		firstPaidIdx := -1
		for i, record := range ordered {
			if record.MontantPaye > 0 {
				firstPaidIdx = i
				break
			}
		}
		firstPaid := ordered[firstPaidIdx]

		for _, duplicate := range ordered[firstPaidIdx+1:] {
			findings = append(findings, models.Finding{
				RunID:           runID,
				RuleID:          rule.ID,
				Severity:        models.SeverityError,
				Category:        models.CategoryAnnualForfait,
				Message:         fmt.Sprintf("Forfait code %s billed on %s was already paid on %s for the same patient in %d (%d billed, %d paid)", cond.PrimaryCode, duplicate.ServiceDay(), firstPaid.ServiceDay(), firstPaid.ServiceYear(), len(ordered), paidCount),
				Solution:        fmt.Sprintf("Cancel this line; the forfait was paid on %s", firstPaid.ServiceDay()),
				BillingRecordID: duplicate.ID,
				AffectedRecords: recordIDs(ordered),
				RuleData: map[string]interface{}{
					"patient":       duplicate.Patient,
					"year":          firstPaid.ServiceYear(),
					"code":          cond.PrimaryCode,
					"firstPaidDate": firstPaid.ServiceDay(),
					"totalCount":    len(ordered),
					"paidCount":     paidCount,
				},
			})
		}
	}
	return findings
}

func forfaitOpportunities(rule models.RuleDefinition, cond *models.AnnualForfaitCondition, records []models.BillingRecord, refs models.ReferenceSet, runID string) []models.Finding {
	// Patient-years that already carry the primary code are covered.
	covered := make(map[string]bool)
	for _, record := range records {
		if record.Code == cond.PrimaryCode && record.Patient != "" {
			covered[patientYearKey(record)] = true
		}
	}

	visits := make(map[string][]models.BillingRecord)
	for _, record := range records {
		if record.Patient == "" || record.Code == cond.PrimaryCode {
			continue
		}
		if !isQualifyingVisit(record, cond, refs) {
			continue
		}
		key := patientYearKey(record)
		visits[key] = append(visits[key], record)
	}

	var findings []models.Finding
	for _, key := range sortedGroupKeys(visits) {
		if covered[key] {
			continue
		}
		group := sortedByDate(visits[key])
		earliest := group[0]
		findings = append(findings, models.Finding{
			RunID:           runID,
			RuleID:          rule.ID,
			Severity:        models.SeverityOptimization,
			Category:        models.CategoryAnnualForfait,
			Message:         fmt.Sprintf("%d qualifying visit(s) in %d at a GMF establishment without forfait code %s; the annual forfait was not billed", len(group), earliest.ServiceYear(), cond.PrimaryCode),
			Solution:        fmt.Sprintf("Bill forfait code %s for this patient for %d", cond.PrimaryCode, earliest.ServiceYear()),
			BillingRecordID: earliest.ID,
			AffectedRecords: recordIDs(group),
			RuleData: map[string]interface{}{
				"patient":      earliest.Patient,
				"year":         earliest.ServiceYear(),
				"code":         cond.PrimaryCode,
				"visitCount":   len(group),
				"missedAmount": cond.MissedAmount,
			},
		})
	}
	return findings
}

// isQualifyingVisit applies the opportunity filter: the code is in the
// explicit visit list or its catalog description group is configured as
// qualifying; the establishment carries the GMF flag; and none of the
// record's context tokens is excluded (exact-token match, case-insensitive,
// trimmed, never substring).
func isQualifyingVisit(record models.BillingRecord, cond *models.AnnualForfaitCondition, refs models.ReferenceSet) bool {
	qualifyingCode := containsString(cond.VisitCodes, record.Code)
	if !qualifyingCode {
		group, ok := refs.CodeGroup[record.Code]
		qualifyingCode = ok && containsString(cond.VisitGroups, group)
	}
	if !qualifyingCode {
		return false
	}
	if !refs.IsQualifyingEstablishment(record.LieuPratique) {
		return false
	}
	return !hasAnyToken(record, cond.ExcludedContexts)
}
