package phi

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"facturation-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestRedactPatientID(t *testing.T) {
	t.Run("same input always yields the same token", func(t *testing.T) {
		first := RedactPatientID("LACM12345678")
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, RedactPatientID("LACM12345678"))
		}
	})

	t.Run("token has the expected shape", func(t *testing.T) {
		token := RedactPatientID("LACM12345678")
		assert.True(t, strings.HasPrefix(token, "[PATIENT-"))
		assert.True(t, strings.HasSuffix(token, "]"))
		assert.Len(t, token, len("[PATIENT-")+8+1)
		hexPart := token[len("[PATIENT-") : len(token)-1]
		assert.Equal(t, strings.ToUpper(hexPart), hexPart)
	})

	t.Run("distinct patients get distinct tokens", func(t *testing.T) {
		seen := make(map[string]string)
		for i := 0; i < 200; i++ {
			id := fmt.Sprintf("PATIENT-%04d", i)
			token := RedactPatientID(id)
			if existing, ok := seen[token]; ok {
				t.Fatalf("token collision between %s and %s", existing, id)
			}
			seen[token] = id
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Equal(t, "", RedactPatientID(""))
	})
}

func TestRedactDoctorInfo(t *testing.T) {
	assert.Equal(t, DoctorMarker, RedactDoctorInfo("Dr. Tremblay (1068303)"))
	assert.Equal(t, DoctorMarker, RedactDoctorInfo("1068303"))
	assert.Equal(t, "", RedactDoctorInfo(""))
}

func TestRedactBillingRecord(t *testing.T) {
	record := models.BillingRecord{
		ID:                  "rec-1",
		RunID:               "run-1",
		RecordNumber:        7,
		Facture:             "F-2024-001",
		IDRamq:              "RAMQ-777",
		DateService:         time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		LieuPratique:        "54321",
		Code:                "15804",
		MontantPreliminaire: 32.40,
		MontantPaye:         32.40,
		DoctorInfo:          "Dr. Gagnon (1068303)",
		Patient:             "LACM12345678",
	}

	t.Run("enabled replaces only PHI fields", func(t *testing.T) {
		redacted := RedactBillingRecord(record, true)

		assert.Equal(t, DoctorMarker, redacted.DoctorInfo)
		assert.True(t, strings.HasPrefix(redacted.Patient, "[PATIENT-"))

		// Administrative identifiers stay intact.
		assert.Equal(t, record.IDRamq, redacted.IDRamq)
		assert.Equal(t, record.Facture, redacted.Facture)
		assert.Equal(t, record.Code, redacted.Code)
		assert.Equal(t, record.DateService, redacted.DateService)
		assert.Equal(t, record.MontantPaye, redacted.MontantPaye)
	})

	t.Run("disabled returns the record unchanged", func(t *testing.T) {
		assert.Equal(t, record, RedactBillingRecord(record, false))
	})

	t.Run("input record is never mutated", func(t *testing.T) {
		before := record
		_ = RedactBillingRecord(record, true)
		assert.Equal(t, before, record)
	})

	t.Run("same patient maps to the same token across records", func(t *testing.T) {
		other := record
		other.ID = "rec-2"
		assert.Equal(t, RedactBillingRecord(record, true).Patient, RedactBillingRecord(other, true).Patient)
	})
}

func TestRedactFinding(t *testing.T) {
	finding := models.Finding{
		ID:     "f-1",
		RunID:  "run-1",
		RuleID: "rule-1",
		RuleData: map[string]interface{}{
			"patient":    "LACM12345678",
			"doctor":     "Dr. Gagnon",
			"idRamq":     "RAMQ-777",
			"totalCount": 3,
			"nested":     map[string]interface{}{"patient": "untouched-by-design"},
		},
	}

	t.Run("top-level PHI keys are redacted", func(t *testing.T) {
		redacted := RedactFinding(finding, true)

		assert.True(t, strings.HasPrefix(redacted.RuleData["patient"].(string), "[PATIENT-"))
		assert.Equal(t, DoctorMarker, redacted.RuleData["doctor"])
		assert.Equal(t, "RAMQ-777", redacted.RuleData["idRamq"])
		assert.Equal(t, 3, redacted.RuleData["totalCount"])
	})

	t.Run("only the top level is inspected", func(t *testing.T) {
		redacted := RedactFinding(finding, true)
		nested := redacted.RuleData["nested"].(map[string]interface{})
		assert.Equal(t, "untouched-by-design", nested["patient"])
	})

	t.Run("non-string PHI values are dropped", func(t *testing.T) {
		weird := finding
		weird.RuleData = map[string]interface{}{"patientId": 12345}
		redacted := RedactFinding(weird, true)
		_, present := redacted.RuleData["patientId"]
		assert.False(t, present)
	})

	t.Run("disabled returns the finding as-is", func(t *testing.T) {
		assert.Equal(t, finding, RedactFinding(finding, false))
	})

	t.Run("input rule data is never mutated", func(t *testing.T) {
		_ = RedactFinding(finding, true)
		assert.Equal(t, "LACM12345678", finding.RuleData["patient"])
	})
}

func TestShouldRedactPHI(t *testing.T) {
	truthy := true
	falsy := false

	assert.True(t, ShouldRedactPHI(nil))
	assert.True(t, ShouldRedactPHI(&truthy))
	assert.False(t, ShouldRedactPHI(&falsy))
}
