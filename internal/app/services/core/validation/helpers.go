package validation

import (
	"fmt"
	"sort"
	"strings"

	"facturation-service/internal/app/models"
)

// sortedByDate returns a copy of records ordered by DateService, breaking
// ties by RecordNumber so handler output stays deterministic.
func sortedByDate(records []models.BillingRecord) []models.BillingRecord {
	out := make([]models.BillingRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateService.Equal(out[j].DateService) {
			return out[i].RecordNumber < out[j].RecordNumber
		}
		return out[i].DateService.Before(out[j].DateService)
	})
	return out
}

// sortedGroupKeys returns the map's keys in lexical order, so iteration over
// groups is reproducible.
func sortedGroupKeys[V any](groups map[string]V) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// patientYearKey groups records per patient per calendar year.
func patientYearKey(r models.BillingRecord) string {
	return fmt.Sprintf("%s|%d", r.Patient, r.ServiceYear())
}

// doctorDayKey groups records per doctor per calendar day.
func doctorDayKey(r models.BillingRecord) string {
	return fmt.Sprintf("%s|%s", r.DoctorInfo, r.ServiceDay())
}

// hasAnyToken reports whether any of the record's context tokens is in the
// given list, using trimmed, case-insensitive, exact-token comparison.
func hasAnyToken(r models.BillingRecord, tokens []string) bool {
	for _, token := range tokens {
		if r.HasContextToken(strings.TrimSpace(token)) {
			return true
		}
	}
	return false
}

// containsString reports membership of target in list.
func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

// recordIDs collects the ids of every record in the group, in slice order.
func recordIDs(records []models.BillingRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
