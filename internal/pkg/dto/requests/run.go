package requests

// SubmitRunRecord is one already-parsed billing line item. Parsing raw CSV
// uploads happens upstream; this service receives structured rows.
type SubmitRunRecord struct {
	RecordNumber        int     `json:"recordNumber"`
	Facture             string  `json:"facture"`
	IDRamq              string  `json:"idRamq"`
	DateService         string  `json:"dateService" validate:"required,service_date"`
	Debut               string  `json:"debut"`
	Fin                 string  `json:"fin"`
	LieuPratique        string  `json:"lieuPratique"`
	SecteurActivite     string  `json:"secteurActivite"`
	Diagnostic          string  `json:"diagnostic"`
	Code                string  `json:"code" validate:"required"`
	Unites              string  `json:"unites"`
	Role                string  `json:"role"`
	ElementContexte     string  `json:"elementContexte"`
	MontantPreliminaire float64 `json:"montantPreliminaire"`
	MontantPaye         float64 `json:"montantPaye"`
	DoctorInfo          string  `json:"doctorInfo"`
	Patient             string  `json:"patient"`
}

type SubmitRun struct {
	Records []SubmitRunRecord `json:"records" validate:"required,min=1,dive"`
}
