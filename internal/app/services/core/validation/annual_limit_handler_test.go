package validation

import (
	"testing"

	"facturation-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func annualLimitRule() models.RuleDefinition {
	return mustDecode(models.RuleDefinition{
		ID:           "rule-annual-limit",
		Category:     models.CategoryAnnualLimit,
		Enabled:      true,
		Severity:     models.SeverityError,
		RawCondition: []byte(`{"leafPatterns":["visite de prise en charge"]}`),
	})
}

func annualLimitRefs() models.ReferenceSet {
	return models.ReferenceSet{
		CodeLeaf: map[string]string{
			"15804": "Visite de prise en charge d'un patient",
			"00103": "Examen ordinaire",
		},
	}
}

func TestValidateAnnualLimit(t *testing.T) {
	t.Run("three billings in one year yield two errors citing the first date", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15804", "2024-01-10")
		second := testRecord("patient-a", "doc-1", "15804", "2024-04-02")
		third := testRecord("patient-a", "doc-1", "15804", "2024-09-20")

		findings, err := ValidateAnnualLimit(annualLimitRule(), []models.BillingRecord{third, first, second}, annualLimitRefs(), testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 2)
		assert.Equal(t, second.ID, findings[0].BillingRecordID)
		assert.Equal(t, third.ID, findings[1].BillingRecordID)
		for _, finding := range findings {
			assert.Equal(t, "2024-01-10", finding.RuleData["firstDate"])
			assert.Equal(t, 3, finding.RuleData["totalCount"])
		}
	})

	t.Run("billings in different calendar years pass", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15804", "2023-12-31")
		second := testRecord("patient-a", "doc-1", "15804", "2024-01-01")

		findings, err := ValidateAnnualLimit(annualLimitRule(), []models.BillingRecord{first, second}, annualLimitRefs(), testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("codes whose leaf does not match are ignored", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "00103", "2024-01-10")
		second := testRecord("patient-a", "doc-1", "00103", "2024-04-02")

		findings, err := ValidateAnnualLimit(annualLimitRule(), []models.BillingRecord{first, second}, annualLimitRefs(), testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("codes absent from the catalog never match", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "99999", "2024-01-10")
		second := testRecord("patient-a", "doc-1", "99999", "2024-04-02")

		findings, err := ValidateAnnualLimit(annualLimitRule(), []models.BillingRecord{first, second}, annualLimitRefs(), testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("different patients are independent", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15804", "2024-01-10")
		second := testRecord("patient-b", "doc-1", "15804", "2024-04-02")

		findings, err := ValidateAnnualLimit(annualLimitRule(), []models.BillingRecord{first, second}, annualLimitRefs(), testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})
}
