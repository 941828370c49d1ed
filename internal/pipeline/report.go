package pipeline

import (
	"log/slog"
	"time"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// ItemFailure names one object or file that failed, so the operator can
// re-run exactly the failed subset.
type ItemFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Report is the run-level summary handed back to the operator.
type Report struct {
	Listed             int
	SkippedUnparseable int
	Filtered           int

	Fetched         int
	SkippedExisting int
	FetchFailures   []ItemFailure

	InvalidFiles    int
	Converted       int
	ConvertFailures []ItemFailure
	Records         []domain.ConversionRecord

	Series *domain.TimeSeries
	MTR    *domain.MetricsTable

	StartedAt   time.Time
	CompletedAt time.Time
}

func newReport() *Report {
	return &Report{StartedAt: domain.Clock().Now()}
}

func (r *Report) finish() {
	r.CompletedAt = domain.Clock().Now()
}

// ConvertedOutputs returns the output paths of all successful conversions,
// in record order.
func (r *Report) ConvertedOutputs() []string {
	var out []string
	for _, rec := range r.Records {
		if rec.Outcome == domain.OutcomeConverted {
			out = append(out, rec.Output)
		}
	}
	return out
}

// Failed reports whether any per-item failure occurred.
func (r *Report) Failed() bool {
	return len(r.FetchFailures) > 0 || len(r.ConvertFailures) > 0
}

// Log writes the summary and every failed item.
func (r *Report) Log(logger *slog.Logger) {
	logger.Info("run complete",
		"listed", r.Listed,
		"skipped_unparseable", r.SkippedUnparseable,
		"filtered", r.Filtered,
		"fetched", r.Fetched,
		"skipped_existing", r.SkippedExisting,
		"fetch_failures", len(r.FetchFailures),
		"invalid_files", r.InvalidFiles,
		"converted", r.Converted,
		"convert_failures", len(r.ConvertFailures),
		"duration", r.CompletedAt.Sub(r.StartedAt).String(),
	)
	for _, f := range r.FetchFailures {
		logger.Warn("fetch failed", "key", f.Key, "error", f.Error)
	}
	for _, f := range r.ConvertFailures {
		logger.Warn("conversion failed", "input", f.Key, "error", f.Error)
	}
	if r.Series != nil {
		logger.Info("time series", "path", r.Series.Path, "profiles", len(r.Series.Profiles))
	}
	if r.MTR != nil {
		logger.Info("mtr table", "path", r.MTR.Path, "rows", r.MTR.Rows)
	}
}
