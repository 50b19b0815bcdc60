package validation

import (
	"facturation-service/internal/app/models"
)

// HandlerFunc evaluates one rule against the full record set of a run and
// returns its findings. Handlers are pure: same inputs, same findings, in the
// same order. They read the shared record slice and the reference snapshot,
// and never mutate either.
type HandlerFunc func(rule models.RuleDefinition, records []models.BillingRecord, refs models.ReferenceSet, runID string) ([]models.Finding, error)

// NewHandlerRegistry builds the category-to-handler table, populated once at
// process start. Rules with a category absent from the table are skipped,
// never failed.
func NewHandlerRegistry() map[models.RuleCategory]HandlerFunc {
	return map[models.RuleCategory]HandlerFunc{
		models.CategoryOfficeFee:       ValidateOfficeFee,
		models.CategoryProhibition:     ValidateProhibition,
		models.CategoryTimeRestriction: ValidateTimeRestriction,
		models.CategoryRequirement:     ValidateRequirement,
		models.CategoryAnnualLimit:     ValidateAnnualLimit,
		models.CategoryAnnualForfait:   ValidateAnnualForfait,
		models.CategoryAmountLimit:     ValidateAmountLimit,
	}
}
