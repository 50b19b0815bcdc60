package validation

import (
	"testing"

	"facturation-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func prohibitionRule() models.RuleDefinition {
	return mustDecode(models.RuleDefinition{
		ID:           "rule-prohibition",
		Category:     models.CategoryProhibition,
		Enabled:      true,
		Severity:     models.SeverityError,
		RawCondition: []byte(`{"codes":["15803","15804"]}`),
	})
}

func TestValidateProhibition(t *testing.T) {
	t.Run("two prohibited codes on one invoice yield one finding", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15803", "2024-02-01")
		second := testRecord("patient-a", "doc-1", "15804", "2024-02-01")
		second.Facture = first.Facture

		findings, err := ValidateProhibition(prohibitionRule(), []models.BillingRecord{second, first}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, first.ID, findings[0].BillingRecordID)
		assert.ElementsMatch(t, []string{first.ID, second.ID}, findings[0].AffectedRecords)
		assert.Equal(t, []string{"15803", "15804"}, findings[0].RuleData["codes"])
	})

	t.Run("prohibited codes on separate invoices pass", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15803", "2024-02-01")
		second := testRecord("patient-a", "doc-1", "15804", "2024-02-01")

		findings, err := ValidateProhibition(prohibitionRule(), []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("same prohibited code twice on one invoice still flags", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15804", "2024-02-01")
		second := testRecord("patient-a", "doc-1", "15804", "2024-02-02")
		second.Facture = first.Facture

		findings, err := ValidateProhibition(prohibitionRule(), []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("records without an invoice number are ignored", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15803", "2024-02-01")
		second := testRecord("patient-a", "doc-1", "15804", "2024-02-01")
		first.Facture = ""
		second.Facture = ""

		findings, err := ValidateProhibition(prohibitionRule(), []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})
}
