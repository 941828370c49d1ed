package domain

import "time"

// Conversion outcome values carried on ConversionRecord.
const (
	OutcomeConverted = "converted"
	OutcomeFailed    = "failed"
)

// ConversionRecord is the per-file outcome of one converter call. Records
// feed the run report and, when enabled, the results topic.
type ConversionRecord struct {
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	Station     string        `json:"station,omitempty"`
	Outcome     string        `json:"outcome"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	CompletedAt time.Time     `json:"completed_at"`
}

// TimeSeries is the opaque product of the external profile aggregator: the
// ordered set of vertical-profile outputs for one run. The aggregation math
// lives in the collaborator, not here.
type TimeSeries struct {
	Profiles []string
	Path     string
}

// MetricsTable is the opaque product of the external MTR integrator, ready
// for plotting or export by downstream tooling.
type MetricsTable struct {
	Path string
	Rows int
}
