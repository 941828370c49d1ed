// Package pipeline orchestrates one run: list the archive, filter by time
// window, materialize the mirrored local tree, convert each volume, and hand
// the profile set to the external aggregation collaborators.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IsaacEarlJr/tigerRAD/internal/config"
	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
	"github.com/IsaacEarlJr/tigerRAD/internal/observability"
	"github.com/IsaacEarlJr/tigerRAD/internal/scan"
)

// ObjectStore reads the remote archive. List tolerates empty prefixes;
// Fetch overwrites destPath. Implementations must be safe for concurrent
// Fetch calls.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]domain.RemoteObject, error)
	Fetch(ctx context.Context, key, destPath string) error
}

// Converter derives one vertical profile from one polar volume. A failed
// call is a per-item failure, never a batch failure.
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// ResultSink receives the per-file outcomes of a run.
type ResultSink interface {
	PublishResults(ctx context.Context, records []domain.ConversionRecord) error
}

// Aggregator assembles converted profiles into a time series. External
// collaborator; pure over the successfully converted set.
type Aggregator interface {
	Aggregate(ctx context.Context, profilePaths []string) (domain.TimeSeries, error)
}

// Integrator derives the migration traffic rate table from a time series.
// External collaborator.
type Integrator interface {
	Integrate(ctx context.Context, series domain.TimeSeries) (domain.MetricsTable, error)
}

// Pipeline wires the stages together. Aggregator, Integrator, and ResultSink
// are optional; a nil stage is skipped.
type Pipeline struct {
	store      ObjectStore
	converter  Converter
	sink       ResultSink
	aggregator Aggregator
	integrator Integrator
	logger     *slog.Logger
	metrics    *observability.Metrics
	cfg        *config.Config
}

// New creates a Pipeline with the given stages and observability.
func New(store ObjectStore, converter Converter, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		store:     store,
		converter: converter,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// WithResultSink attaches an optional per-file result publisher.
func (p *Pipeline) WithResultSink(s ResultSink) *Pipeline {
	p.sink = s
	return p
}

// WithCollaborators attaches the optional aggregation and integration stages.
func (p *Pipeline) WithCollaborators(a Aggregator, i Integrator) *Pipeline {
	p.aggregator = a
	p.integrator = i
	return p
}

// ListAndFilter lists the configured prefix and keeps objects inside the
// time window. Returns the kept objects plus the listed and unparseable
// totals; unparseable basenames are, unless strict naming is on, skipped
// with a warning.
func (p *Pipeline) ListAndFilter(ctx context.Context) (kept []domain.RemoteObject, listed, skipped int, err error) {
	objects, err := p.store.List(ctx, p.cfg.Prefix)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("remote listing: %w", err)
	}
	listed = len(objects)
	p.metrics.ObjectsListed.Add(float64(listed))

	kept, skipped, err = domain.FilterByWindow(objects, p.cfg.Window, p.cfg.StrictNames)
	if err != nil {
		return nil, 0, 0, err
	}
	if skipped > 0 {
		p.metrics.UnparseableNames.Add(float64(skipped))
		p.logger.Warn("excluded objects with unparseable names",
			"prefix", p.cfg.Prefix, "skipped", skipped)
	}
	p.metrics.ObjectsFiltered.Add(float64(len(kept)))

	p.logger.Info("archive listing filtered",
		"prefix", p.cfg.Prefix,
		"listed", listed,
		"window", p.cfg.Window.String(),
		"kept", len(kept),
	)
	return kept, listed, skipped, nil
}

// Fetch runs stages 1-3: list, filter, materialize. Used by the fetch
// command and by Run.
func (p *Pipeline) Fetch(ctx context.Context) (*Report, error) {
	report := newReport()

	kept, listed, skipped, err := p.ListAndFilter(ctx)
	if err != nil {
		return nil, err
	}
	report.Listed = listed
	report.SkippedUnparseable = skipped
	report.Filtered = len(kept)

	if err := p.materialize(ctx, kept, report); err != nil {
		return nil, err
	}

	report.finish()
	return report, nil
}

// Convert runs stages 4-5 over whatever the input tree currently holds.
// Used by the convert command and by Run.
func (p *Pipeline) Convert(ctx context.Context) (*Report, error) {
	report := newReport()
	if err := p.convertTree(ctx, report); err != nil {
		return nil, err
	}
	report.finish()
	return report, nil
}

// Run executes the full pipeline and returns the run report. Per-item fetch
// and conversion failures are in the report, not in err; err is reserved for
// failures that invalidate the whole run (listing, directory creation,
// aggregation, cancellation).
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	report := newReport()

	kept, listed, skipped, err := p.ListAndFilter(ctx)
	if err != nil {
		return nil, err
	}
	report.Listed = listed
	report.SkippedUnparseable = skipped
	report.Filtered = len(kept)

	if err := p.materialize(ctx, kept, report); err != nil {
		return nil, err
	}

	if err := p.convertTree(ctx, report); err != nil {
		return nil, err
	}

	if err := p.aggregate(ctx, report); err != nil {
		return nil, err
	}

	if p.sink != nil {
		if err := p.sink.PublishResults(ctx, report.Records); err != nil {
			// Result events are advisory; losing them must not fail the run.
			p.logger.Warn("publishing run results failed", "error", err)
		}
	}

	report.finish()
	return report, nil
}

// convertTree walks the input tree, maps the mirrored outputs, and converts
// every valid volume.
func (p *Pipeline) convertTree(ctx context.Context, report *Report) error {
	files, err := scan.Walk(p.cfg.InputRoot, p.cfg.InvalidSuffix)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !f.Valid {
			report.InvalidFiles++
		}
	}

	pairs, err := scan.MapTree(p.cfg.InputRoot, p.cfg.OutputRoot, files, p.cfg.OutputSuffix)
	if err != nil {
		return err
	}

	p.logger.Info("input tree mapped",
		"input_root", p.cfg.InputRoot,
		"volumes", len(pairs),
		"invalid", report.InvalidFiles,
	)

	return p.convertAll(ctx, pairs, report)
}

// aggregate hands the successful profile outputs to the external
// collaborators, when attached.
func (p *Pipeline) aggregate(ctx context.Context, report *Report) error {
	if p.aggregator == nil {
		return nil
	}

	profiles := report.ConvertedOutputs()
	if len(profiles) == 0 {
		p.logger.Warn("no profiles to aggregate")
		return nil
	}

	series, err := p.aggregator.Aggregate(ctx, profiles)
	if err != nil {
		return fmt.Errorf("aggregate profiles: %w", err)
	}
	report.Series = &series
	p.logger.Info("profiles aggregated", "profiles", len(profiles), "series", series.Path)

	if p.integrator == nil {
		return nil
	}
	table, err := p.integrator.Integrate(ctx, series)
	if err != nil {
		return fmt.Errorf("integrate time series: %w", err)
	}
	report.MTR = &table
	p.logger.Info("migration traffic rate derived", "table", table.Path, "rows", table.Rows)
	return nil
}
