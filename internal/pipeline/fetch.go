package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
	"github.com/IsaacEarlJr/tigerRAD/internal/scan"
)

// materialize downloads the filtered objects into the mirrored local tree
// through a bounded worker pool. A failed fetch is recorded in the report
// and the rest of the batch proceeds; only cancellation or an uncreatable
// directory aborts.
func (p *Pipeline) materialize(ctx context.Context, objects []domain.RemoteObject, report *Report) error {
	if len(objects) == 0 {
		return nil
	}

	// Create every directory up front so workers never race a failed branch.
	dirs := map[string]struct{}{}
	for _, obj := range objects {
		dirs[filepath.Dir(p.localPath(obj.Key))] = struct{}{}
	}
	for dir := range dirs {
		if err := scan.EnsureDir(dir); err != nil {
			return err
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, obj := range objects {
		g.Go(func() error {
			outcome := p.fetchOne(gctx, obj)

			mu.Lock()
			defer mu.Unlock()
			switch outcome.kind {
			case fetchOK:
				report.Fetched++
			case fetchSkipped:
				report.SkippedExisting++
			case fetchFailed:
				report.FetchFailures = append(report.FetchFailures, ItemFailure{
					Key:   obj.Key,
					Error: outcome.err.Error(),
				})
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	p.logger.Info("local tree materialized",
		"fetched", report.Fetched,
		"skipped_existing", report.SkippedExisting,
		"failed", len(report.FetchFailures),
	)
	return nil
}

type fetchKind int

const (
	fetchOK fetchKind = iota
	fetchSkipped
	fetchFailed
)

type fetchOutcome struct {
	kind fetchKind
	err  error
}

// fetchOne downloads a single object under the per-fetch timeout. With
// skip-existing on, a local file of the same size stands; otherwise every
// fetch overwrites, which keeps re-runs idempotent in tree shape.
func (p *Pipeline) fetchOne(ctx context.Context, obj domain.RemoteObject) fetchOutcome {
	dest := p.localPath(obj.Key)

	if p.cfg.SkipExisting {
		if info, err := os.Stat(dest); err == nil && info.Size() == obj.Size {
			p.metrics.Fetches.WithLabelValues("skipped").Inc()
			p.logger.Debug("skipping existing volume", "key", obj.Key)
			return fetchOutcome{kind: fetchSkipped}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	start := domain.Clock().Now()
	err := p.store.Fetch(fetchCtx, obj.Key, dest)
	p.metrics.FetchDuration.Observe(domain.Clock().Now().Sub(start).Seconds())

	if err != nil {
		// A failed download may leave a partial file, which the convert
		// stage would otherwise walk as a complete volume.
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("removing partial download failed", "path", dest, "error", rmErr)
		}
		p.metrics.Fetches.WithLabelValues("failed").Inc()
		p.logger.Warn("fetch failed, continuing", "key", obj.Key, "error", err)
		return fetchOutcome{kind: fetchFailed, err: err}
	}

	p.metrics.Fetches.WithLabelValues("fetched").Inc()
	return fetchOutcome{kind: fetchOK}
}

// localPath maps an object key onto the mirrored input tree.
func (p *Pipeline) localPath(key string) string {
	return filepath.Join(p.cfg.InputRoot, filepath.FromSlash(key))
}
