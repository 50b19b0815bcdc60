package validation

import (
	"testing"

	"facturation-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func timeRestrictionRule() models.RuleDefinition {
	return mustDecode(models.RuleDefinition{
		ID:           "rule-time-restriction",
		Category:     models.CategoryTimeRestriction,
		Enabled:      true,
		Severity:     models.SeverityError,
		RawCondition: []byte(`{"code":"15815","minIntervalDays":30}`),
	})
}

func TestValidateTimeRestriction(t *testing.T) {
	t.Run("gap below the minimum is an error on the earlier record", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15815", "2024-05-01")
		second := testRecord("patient-a", "doc-1", "15815", "2024-05-15")

		findings, err := ValidateTimeRestriction(timeRestrictionRule(), []models.BillingRecord{second, first}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 1)
		assert.Equal(t, first.ID, findings[0].BillingRecordID)
		assert.Equal(t, []string{first.ID, second.ID}, findings[0].AffectedRecords)
		assert.Equal(t, 14, findings[0].RuleData["gapDays"])
	})

	t.Run("gap equal to the minimum passes", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15815", "2024-05-01")
		second := testRecord("patient-a", "doc-1", "15815", "2024-05-31")

		findings, err := ValidateTimeRestriction(timeRestrictionRule(), []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("different patients are independent", func(t *testing.T) {
		first := testRecord("patient-a", "doc-1", "15815", "2024-05-01")
		second := testRecord("patient-b", "doc-1", "15815", "2024-05-02")

		findings, err := ValidateTimeRestriction(timeRestrictionRule(), []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("rule threshold overrides the condition interval", func(t *testing.T) {
		threshold := 10.0
		rule := timeRestrictionRule()
		rule.Threshold = &threshold

		first := testRecord("patient-a", "doc-1", "15815", "2024-05-01")
		second := testRecord("patient-a", "doc-1", "15815", "2024-05-15")

		findings, err := ValidateTimeRestriction(rule, []models.BillingRecord{first, second}, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("three close billings yield one finding per consecutive pair", func(t *testing.T) {
		records := []models.BillingRecord{
			testRecord("patient-a", "doc-1", "15815", "2024-05-01"),
			testRecord("patient-a", "doc-1", "15815", "2024-05-10"),
			testRecord("patient-a", "doc-1", "15815", "2024-05-20"),
		}

		findings, err := ValidateTimeRestriction(timeRestrictionRule(), records, models.ReferenceSet{}, testRunID)
		assert.NoError(t, err)
		assert.Len(t, findings, 2)
	})
}
