package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// convertAll runs the converter once per pair through the bounded pool.
// Each failure is caught, logged, and recorded; files after a bad one are
// still attempted. Conversions are independent, so pool ordering does not
// matter: every output path is independently addressed.
func (p *Pipeline) convertAll(ctx context.Context, pairs []domain.MirroredPath, report *Report) error {
	if len(pairs) == 0 {
		return nil
	}

	records := make([]domain.ConversionRecord, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, pair := range pairs {
		g.Go(func() error {
			records[i] = p.convertOne(gctx, pair)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, rec := range records {
		report.Records = append(report.Records, rec)
		if rec.Outcome == domain.OutcomeConverted {
			report.Converted++
		} else {
			report.ConvertFailures = append(report.ConvertFailures, ItemFailure{
				Key:   rec.Input,
				Error: rec.Error,
			})
		}
	}

	p.logger.Info("conversion finished",
		"converted", report.Converted,
		"failed", len(report.ConvertFailures),
	)
	return nil
}

// convertOne calls the converter for a single pair under the per-conversion
// timeout and builds its record.
func (p *Pipeline) convertOne(ctx context.Context, pair domain.MirroredPath) domain.ConversionRecord {
	convertCtx, cancel := context.WithTimeout(ctx, p.cfg.ConvertTimeout)
	defer cancel()

	start := domain.Clock().Now()
	err := p.converter.Convert(convertCtx, pair.Input, pair.Output)
	completed := domain.Clock().Now()
	p.metrics.ConversionDuration.Observe(completed.Sub(start).Seconds())

	rec := domain.ConversionRecord{
		Input:       pair.Input,
		Output:      pair.Output,
		Station:     domain.Station(pair.Input),
		Duration:    completed.Sub(start),
		CompletedAt: completed,
	}
	if err != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Error = err.Error()
		p.metrics.Conversions.WithLabelValues("failed").Inc()
		p.logger.Warn("conversion failed, continuing", "input", pair.Input, "error", err)
		return rec
	}

	rec.Outcome = domain.OutcomeConverted
	p.metrics.Conversions.WithLabelValues("converted").Inc()
	return rec
}
