package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsaacEarlJr/tigerRAD/internal/config"
	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
	"github.com/IsaacEarlJr/tigerRAD/internal/observability"
	"github.com/IsaacEarlJr/tigerRAD/internal/pipeline"
)

// --- mocks ---

type mockStore struct {
	keys      []string
	failFetch map[string]bool

	mu      sync.Mutex
	fetched []string
}

func (m *mockStore) List(_ context.Context, _ string) ([]domain.RemoteObject, error) {
	objs := make([]domain.RemoteObject, len(m.keys))
	for i, k := range m.keys {
		objs[i] = domain.RemoteObject{Bucket: "test-bucket", Key: k, Size: 4}
	}
	return objs, nil
}

func (m *mockStore) Fetch(_ context.Context, key, destPath string) error {
	m.mu.Lock()
	m.fetched = append(m.fetched, key)
	m.mu.Unlock()
	if m.failFetch[key] {
		// A real transfer dies mid-stream, leaving a truncated file.
		_ = os.WriteFile(destPath, []byte("pv"), 0o644)
		return errors.New("connection reset")
	}
	return os.WriteFile(destPath, []byte("pvol"), 0o644)
}

type failingStore struct{}

func (failingStore) List(context.Context, string) ([]domain.RemoteObject, error) {
	return nil, errors.New("access denied")
}

func (failingStore) Fetch(context.Context, string, string) error {
	return errors.New("access denied")
}

type mockConverter struct {
	failOn map[string]bool

	mu        sync.Mutex
	attempted []string
}

func (m *mockConverter) Convert(_ context.Context, input, output string) error {
	base := filepath.Base(input)
	m.mu.Lock()
	m.attempted = append(m.attempted, base)
	m.mu.Unlock()
	if m.failOn[base] {
		return errors.New("no usable scans")
	}
	return os.WriteFile(output, []byte("vp"), 0o644)
}

type mockAggregator struct {
	got []string
	err error
}

func (m *mockAggregator) Aggregate(_ context.Context, profilePaths []string) (domain.TimeSeries, error) {
	m.got = profilePaths
	if m.err != nil {
		return domain.TimeSeries{}, m.err
	}
	return domain.TimeSeries{Profiles: profilePaths, Path: "vpts.csv"}, nil
}

type mockIntegrator struct {
	got domain.TimeSeries
}

func (m *mockIntegrator) Integrate(_ context.Context, series domain.TimeSeries) (domain.MetricsTable, error) {
	m.got = series
	return domain.MetricsTable{Path: "mtr.csv", Rows: len(series.Profiles)}, nil
}

type mockSink struct {
	published []domain.ConversionRecord
	err       error
}

func (m *mockSink) PublishResults(_ context.Context, records []domain.ConversionRecord) error {
	m.published = records
	return m.err
}

// --- helpers ---

func dayKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("2024/12/12/KDIX/KDIX20241212_%02d3015_V06", i+1)
	}
	return keys
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	window, err := domain.NewTimeWindow(0, 235959)
	require.NoError(t, err)
	return &config.Config{
		Bucket:         "test-bucket",
		Prefix:         "2024/12/12/KDIX/",
		InputRoot:      t.TempDir(),
		OutputRoot:     t.TempDir(),
		Window:         window,
		InvalidSuffix:  "_MDM",
		OutputSuffix:   ".h5",
		Workers:        3,
		FetchTimeout:   time.Minute,
		ConvertTimeout: time.Minute,
	}
}

func newTestPipeline(cfg *config.Config, store pipeline.ObjectStore, conv pipeline.Converter) *pipeline.Pipeline {
	return pipeline.New(store, conv, cfg, slog.Default(), observability.NewMetricsForTesting())
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: dayKeys(3)}
	conv := &mockConverter{}

	report, err := newTestPipeline(cfg, store, conv).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Listed)
	assert.Equal(t, 3, report.Filtered)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Converted)
	assert.Empty(t, report.FetchFailures)
	assert.Empty(t, report.ConvertFailures)
	assert.False(t, report.Failed())

	// Every output exists under the mirrored tree.
	for _, out := range report.ConvertedOutputs() {
		assert.True(t, strings.HasPrefix(out, cfg.OutputRoot))
		assert.True(t, strings.HasSuffix(out, "_V06.h5"))
		_, statErr := os.Stat(out)
		assert.NoError(t, statErr)
	}
}

func TestPipeline_Run_PartialConversionFailure(t *testing.T) {
	cfg := testConfig(t)
	keys := dayKeys(5)
	store := &mockStore{keys: keys}
	conv := &mockConverter{failOn: map[string]bool{filepath.Base(keys[2]): true}}

	report, err := newTestPipeline(cfg, store, conv).Run(context.Background())
	require.NoError(t, err, "a single bad input never aborts the batch")

	assert.Equal(t, 4, report.Converted)
	require.Len(t, report.ConvertFailures, 1)
	assert.Equal(t, filepath.Base(keys[2]), filepath.Base(report.ConvertFailures[0].Key))
	assert.True(t, report.Failed())

	// Files after the bad one were attempted, not skipped.
	sort.Strings(conv.attempted)
	want := make([]string, len(keys))
	for i, k := range keys {
		want[i] = filepath.Base(k)
	}
	sort.Strings(want)
	assert.Equal(t, want, conv.attempted)
}

func TestPipeline_Run_FetchFailureDoesNotAbort(t *testing.T) {
	cfg := testConfig(t)
	keys := dayKeys(3)
	store := &mockStore{keys: keys, failFetch: map[string]bool{keys[1]: true}}
	conv := &mockConverter{}

	report, err := newTestPipeline(cfg, store, conv).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	require.Len(t, report.FetchFailures, 1)
	assert.Equal(t, keys[1], report.FetchFailures[0].Key)
	assert.Equal(t, 2, report.Converted, "only materialized volumes are converted")
	assert.Len(t, conv.attempted, 2, "partial downloads never reach the converter")

	_, statErr := os.Stat(filepath.Join(cfg.InputRoot, filepath.FromSlash(keys[1])))
	assert.True(t, os.IsNotExist(statErr), "failed fetch leaves no partial file behind")
}

func TestPipeline_Run_ListingFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	_, err := newTestPipeline(cfg, failingStore{}, &mockConverter{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote listing")
}

func TestPipeline_Run_WindowFiltering(t *testing.T) {
	cfg := testConfig(t)
	var err error
	cfg.Window, err = domain.NewTimeWindow(100000, 120000)
	require.NoError(t, err)

	store := &mockStore{keys: []string{
		"2024/12/12/KDIX/KDIX20241212_093015_V06", // before window
		"2024/12/12/KDIX/KDIX20241212_100000_V06", // start boundary
		"2024/12/12/KDIX/KDIX20241212_120000_V06", // end boundary
		"2024/12/12/KDIX/KDIX20241212_121500_V06", // after window
	}}

	report, err := newTestPipeline(cfg, store, &mockConverter{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Listed)
	assert.Equal(t, 2, report.Filtered, "boundaries are inclusive, outside excluded")
	assert.Equal(t, 2, report.Fetched)
}

func TestPipeline_Run_UnparseableNames(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: []string{
		"2024/12/12/KDIX/KDIX20241212_093015_V06",
		"2024/12/12/KDIX/stray-checksum-file",
	}}

	t.Run("fail closed by default", func(t *testing.T) {
		report, err := newTestPipeline(cfg, store, &mockConverter{}).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, report.Listed, "listed counts every object, filtered or not")
		assert.Equal(t, 1, report.SkippedUnparseable)
		assert.Equal(t, 1, report.Filtered)
	})

	t.Run("fail loud when strict", func(t *testing.T) {
		strictCfg := testConfig(t)
		strictCfg.StrictNames = true
		_, err := newTestPipeline(strictCfg, store, &mockConverter{}).Run(context.Background())
		require.Error(t, err)
	})
}

func TestPipeline_Run_InvalidMarkerExcluded(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: []string{
		"2024/12/12/KDIX/KDIX20241212_093015_V06",
		"2024/12/12/KDIX/KDIX20241212_095900_V06_MDM",
	}}
	conv := &mockConverter{}

	report, err := newTestPipeline(cfg, store, conv).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched, "metadata objects are still mirrored locally")
	assert.Equal(t, 1, report.InvalidFiles)
	assert.Equal(t, 1, report.Converted, "metadata objects never reach the converter")
	assert.Len(t, conv.attempted, 1)
}

func TestPipeline_Fetch_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: dayKeys(3)}
	p := newTestPipeline(cfg, store, &mockConverter{})

	first, err := p.Fetch(context.Background())
	require.NoError(t, err)
	shape1 := treeShape(t, cfg.InputRoot)

	second, err := p.Fetch(context.Background())
	require.NoError(t, err)
	shape2 := treeShape(t, cfg.InputRoot)

	assert.Equal(t, first.Fetched, second.Fetched)
	assert.Equal(t, shape1, shape2, "re-running leaves the tree shape unchanged")
}

func TestPipeline_Fetch_SkipExisting(t *testing.T) {
	cfg := testConfig(t)
	cfg.SkipExisting = true
	store := &mockStore{keys: dayKeys(2)}
	p := newTestPipeline(cfg, store, &mockConverter{})

	first, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Fetched)

	second, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Fetched)
	assert.Equal(t, 2, second.SkippedExisting)
}

func TestPipeline_Run_Collaborators(t *testing.T) {
	cfg := testConfig(t)
	keys := dayKeys(3)
	store := &mockStore{keys: keys}
	conv := &mockConverter{failOn: map[string]bool{filepath.Base(keys[0]): true}}
	agg := &mockAggregator{}
	integ := &mockIntegrator{}
	sink := &mockSink{}

	p := newTestPipeline(cfg, store, conv).
		WithCollaborators(agg, integ).
		WithResultSink(sink)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, agg.got, 2, "only successful profiles are aggregated")
	require.NotNil(t, report.Series)
	assert.Equal(t, "vpts.csv", report.Series.Path)
	require.NotNil(t, report.MTR)
	assert.Equal(t, 2, report.MTR.Rows)
	assert.Len(t, sink.published, 3, "every attempt publishes a record")
}

func TestPipeline_Run_SinkFailureIsAdvisory(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: dayKeys(1)}
	sink := &mockSink{err: errors.New("broker down")}

	report, err := newTestPipeline(cfg, store, &mockConverter{}).
		WithResultSink(sink).
		Run(context.Background())
	require.NoError(t, err, "losing result events must not fail the run")
	assert.Equal(t, 1, report.Converted)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	cfg := testConfig(t)
	store := &mockStore{keys: dayKeys(4)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(cfg, store, &mockConverter{}).Run(ctx)
	require.Error(t, err)
}

// treeShape returns the sorted relative paths of all files and directories
// under root.
func treeShape(t *testing.T, root string) []string {
	t.Helper()
	var shape []string
	require.NoError(t, filepath.WalkDir(root, func(path string, _ os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		shape = append(shape, rel)
		return nil
	}))
	sort.Strings(shape)
	return shape
}
