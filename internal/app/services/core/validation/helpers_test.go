package validation

import (
	"strconv"
	"time"

	"facturation-service/internal/app/models"
)

const testRunID = "run-test"

var recordCounter int

// testRecord builds a billing record with deterministic ids and an increasing
// record number, so handler output ordering is easy to assert on.
func testRecord(patient, doctor, code, day string) models.BillingRecord {
	recordCounter++
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.BillingRecord{
		ID:           "rec-" + strconv.Itoa(recordCounter),
		RunID:        testRunID,
		RecordNumber: recordCounter,
		Facture:      "F-" + strconv.Itoa(recordCounter),
		IDRamq:       "RAMQ-" + patient,
		DateService:  date,
		LieuPratique: "10001",
		Code:         code,
		DoctorInfo:   doctor,
		Patient:      patient,
	}
}

func mustDecode(rule models.RuleDefinition) models.RuleDefinition {
	if err := rule.DecodeCondition(); err != nil {
		panic(err)
	}
	return rule
}
