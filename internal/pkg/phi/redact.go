// Package phi is the redaction boundary: every record or finding that leaves
// the engine for a display, export or monitoring channel passes through it.
// The policy is fail-closed: when a value cannot be transformed it is dropped,
// never returned unredacted.
package phi

import (
	"encoding/hex"
	"strings"
	"sync"

	"facturation-service/internal/app/models"

	"golang.org/x/crypto/blake2b"
)

// DoctorMarker replaces every doctor identifier. Doctors are never tracked
// across records, so a constant marker is sufficient.
const DoctorMarker = "[REDACTED]"

// DefaultKey is used when no process-wide key has been configured. Production
// deployments set PHI_REDACTION_KEY; changing the key changes every token.
const DefaultKey = "facturation-default-redaction-key"

var (
	keyMu     sync.RWMutex
	digestKey = []byte(DefaultKey)
)

// Configure sets the process-wide redaction key. An empty key keeps the
// default. Called once at bootstrap, before any run is served.
func Configure(key string) {
	if key == "" {
		return
	}
	keyMu.Lock()
	digestKey = []byte(key)
	keyMu.Unlock()
}

// RedactPatientID maps a patient identifier to a deterministic opaque token
// of the form [PATIENT-XXXXXXXX]. The same input under the same key always
// yields the same token, so redacted records for one patient still group
// together. Empty input yields "".
func RedactPatientID(id string) string {
	if id == "" {
		return ""
	}
	keyMu.RLock()
	key := digestKey
	keyMu.RUnlock()

	// BLAKE2b only limits key length; fold an oversized key down first.
	if len(key) > blake2b.Size {
		folded := blake2b.Sum256(key)
		key = folded[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Fail closed: an unusable key must not leak the identifier.
		return "[PATIENT-UNAVAILABLE]"
	}
	h.Write([]byte(id))
	digest := h.Sum(nil)
	return "[PATIENT-" + strings.ToUpper(hex.EncodeToString(digest[:4])) + "]"
}

// RedactDoctorInfo replaces any non-empty doctor identifier with the constant
// marker. Empty input yields "".
func RedactDoctorInfo(info string) string {
	if info == "" {
		return ""
	}
	return DoctorMarker
}

// RedactBillingRecord returns a PHI-safe copy of the record when enabled, or
// the record unchanged when disabled. Every non-PHI field, explicitly
// including IDRamq and Facture, is copied verbatim. The input is never
// mutated.
func RedactBillingRecord(record models.BillingRecord, enabled bool) models.BillingRecord {
	if !enabled {
		return record
	}
	redacted := record
	redacted.Patient = RedactPatientID(record.Patient)
	redacted.DoctorInfo = RedactDoctorInfo(record.DoctorInfo)
	return redacted
}

// RedactFinding returns a copy of the finding whose RuleData has PHI-shaped
// top-level keys redacted: "patient"/"patientId" through the patient token,
// "doctor"/"doctorInfo" through the doctor marker, string values only. All
// other keys, nested structures included, pass through unchanged; only the
// top level is inspected. Disabled returns the input as-is.
func RedactFinding(finding models.Finding, enabled bool) models.Finding {
	if !enabled || finding.RuleData == nil {
		return finding
	}
	redacted := finding
	redacted.RuleData = make(map[string]interface{}, len(finding.RuleData))
	for key, value := range finding.RuleData {
		switch key {
		case "patient", "patientId":
			if s, ok := value.(string); ok {
				redacted.RuleData[key] = RedactPatientID(s)
			}
			// Non-string patient values are dropped rather than leaked.
		case "doctor", "doctorInfo":
			if s, ok := value.(string); ok {
				redacted.RuleData[key] = RedactDoctorInfo(s)
			}
		default:
			redacted.RuleData[key] = value
		}
	}
	return redacted
}

// ShouldRedactPHI resolves a caller redaction preference. Privacy first: only
// an explicit false disables redaction.
func ShouldRedactPHI(preference *bool) bool {
	return preference == nil || *preference
}
