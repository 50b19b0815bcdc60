package config

type InternalConfig struct {
	App      App
	Phi      Phi
	Engine   Engine
	RunQueue RunQueue
	Export   Export
}

type App struct {
	Env             string
	Port            string
	Version         string
	EndpointPrefix  string
	Timezone        string
	MaxRequests     int
	ShutdownTimeout int
}

// Phi configures the redaction boundary.
type Phi struct {
	// RedactionKey keys the patient-token digest. Empty keeps the built-in
	// default; rotating it changes every token.
	RedactionKey string
	// RedactByDefault is the fallback when a caller states no preference.
	RedactByDefault bool
}

type Engine struct {
	// RunTimeoutInSeconds bounds one validation run end to end; an expired
	// run transitions to failed with a timeout message.
	RunTimeoutInSeconds int
	// ProgressWritesPerSecond throttles progress persistence for long runs.
	ProgressWritesPerSecond int
}

type RunQueue struct {
	// MaxQueue is how many queued runs the worker processes per tick.
	MaxQueue int
	// ThrottleRetry is the failed-count threshold before a run message is
	// moved to the DLQ.
	ThrottleRetry int
	// WorkerIntervalInSeconds is the worker tick period.
	WorkerIntervalInSeconds int
}

type Export struct {
	BucketName string
}
