package responses

type Export struct {
	RunID        string `json:"runId"`
	ObjectName   string `json:"objectName"`
	Bucket       string `json:"bucket"`
	FindingCount int    `json:"findingCount"`
}
