package constvars

const (
	SubmitRunSuccessMessage      = "Validation run submitted successfully"
	GetRunSuccessMessage         = "Validation run retrieved successfully"
	GetFindingsSuccessMessage    = "Validation results retrieved successfully"
	GetRecordsSuccessMessage     = "Billing records retrieved successfully"
	ExportFindingsSuccessMessage = "Validation results exported successfully"
	GetRulesSuccessMessage       = "Validation rules retrieved successfully"
)
