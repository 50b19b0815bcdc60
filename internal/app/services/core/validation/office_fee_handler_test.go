package validation

import (
	"testing"

	"facturation-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func officeFeeRule() models.RuleDefinition {
	return mustDecode(models.RuleDefinition{
		ID:           "rule-office-fee",
		Category:     models.CategoryOfficeFee,
		Enabled:      true,
		Severity:     models.SeverityError,
		RawCondition: []byte(`{"codes":{"19929":{"registeredMin":6,"walkInMin":10,"alternativeCode":"19928"}},"walkInContexts":["G160","AR"]}`),
	})
}

func TestValidateOfficeFee(t *testing.T) {
	day := "2024-03-11"

	t.Run("fee with enough registered patients passes", func(t *testing.T) {
		records := []models.BillingRecord{testRecord("", "doc-1", "19929", day)}
		for i := 0; i < 6; i++ {
			records = append(records, testRecord("patient-"+string(rune('a'+i)), "doc-1", "00103", day))
		}

		findings, err := ValidateOfficeFee(officeFeeRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("one patient short of the registered minimum fails", func(t *testing.T) {
		fee := testRecord("", "doc-1", "19929", day)
		records := []models.BillingRecord{fee}
		for i := 0; i < 5; i++ {
			records = append(records, testRecord("patient-"+string(rune('a'+i)), "doc-1", "00103", day))
		}

		findings, err := ValidateOfficeFee(officeFeeRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, models.SeverityError, findings[0].Severity)
		assert.Equal(t, fee.ID, findings[0].BillingRecordID)
		assert.Contains(t, findings[0].Solution, "19928")
		assert.Equal(t, "doc-1", findings[0].RuleData["doctor"])
		assert.Equal(t, 5, findings[0].RuleData["registeredCount"])
	})

	t.Run("walk-in threshold can satisfy the fee on its own", func(t *testing.T) {
		records := []models.BillingRecord{testRecord("", "doc-1", "19929", day)}
		for i := 0; i < 10; i++ {
			visit := testRecord("walkin-"+string(rune('a'+i)), "doc-1", "00103", day)
			visit.ElementContexte = "G160"
			records = append(records, visit)
		}

		findings, err := ValidateOfficeFee(officeFeeRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("same patient seen twice counts once", func(t *testing.T) {
		records := []models.BillingRecord{testRecord("", "doc-1", "19929", day)}
		for i := 0; i < 6; i++ {
			records = append(records, testRecord("patient-a", "doc-1", "00103", day))
		}

		findings, err := ValidateOfficeFee(officeFeeRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("patients of another doctor or day never count", func(t *testing.T) {
		records := []models.BillingRecord{testRecord("", "doc-1", "19929", day)}
		for i := 0; i < 6; i++ {
			records = append(records, testRecord("patient-"+string(rune('a'+i)), "doc-2", "00103", day))
		}

		findings, err := ValidateOfficeFee(officeFeeRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("undecoded condition is a handler error", func(t *testing.T) {
		rule := models.RuleDefinition{ID: "broken", Category: models.CategoryOfficeFee}
		_, err := ValidateOfficeFee(rule, nil, models.ReferenceSet{}, testRunID)
		assert.Error(t, err)
	})
}
