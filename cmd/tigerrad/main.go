// Command tigerrad fetches NEXRAD Level-II volumes for one station-day,
// converts them to vertical profiles, and reports the run. It is a batch
// tool: it runs, prints its report, and exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	kafkaadapter "github.com/IsaacEarlJr/tigerRAD/internal/adapter/kafka"
	"github.com/IsaacEarlJr/tigerRAD/internal/adapter/s3"
	"github.com/IsaacEarlJr/tigerRAD/internal/adapter/vol2bird"
	"github.com/IsaacEarlJr/tigerRAD/internal/config"
	"github.com/IsaacEarlJr/tigerRAD/internal/observability"
	"github.com/IsaacEarlJr/tigerRAD/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "tigerrad",
		Usage: "fetch and profile NEXRAD Level-II volumes for avian migration analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "station", Usage: "4-letter radar station, e.g. KDIX"},
			&cli.StringFlag{Name: "date", Usage: "archive day, YYYY-MM-DD"},
			&cli.StringFlag{Name: "prefix", Usage: "explicit key prefix (overrides station/date)"},
			&cli.StringFlag{Name: "bucket", Usage: "archive bucket"},
			&cli.StringFlag{Name: "window-start", Usage: "window start, HHMMSS UTC"},
			&cli.StringFlag{Name: "window-end", Usage: "window end, HHMMSS UTC"},
			&cli.StringFlag{Name: "input-root", Usage: "local root for raw volumes"},
			&cli.StringFlag{Name: "output-root", Usage: "local root for derived profiles"},
			&cli.IntFlag{Name: "workers", Usage: "worker pool size"},
			&cli.BoolFlag{Name: "skip-existing", Usage: "skip objects already on disk with matching size"},
			&cli.BoolFlag{Name: "strict-names", Usage: "fail the run on unparseable basenames"},
		},
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "list, filter, and download volumes only",
				Action: func(c *cli.Context) error { return execute(c, stageFetch) },
			},
			{
				Name:   "convert",
				Usage:  "convert an already-downloaded tree only",
				Action: func(c *cli.Context) error { return execute(c, stageConvert) },
			},
			{
				Name:   "run",
				Usage:  "full pipeline: fetch, convert, aggregate",
				Action: func(c *cli.Context) error { return execute(c, stageRun) },
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type stage int

const (
	stageFetch stage = iota
	stageConvert
	stageRun
)

func execute(c *cli.Context, s stage) error {
	cfg, err := loadConfig(c, s)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := s3.New(cfg, logger)
	if err != nil {
		return err
	}
	converter := vol2bird.New(cfg.Vol2BirdPath, logger)

	p := pipeline.New(store, converter, cfg, logger, metrics)
	if cfg.KafkaEnabled {
		sink := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		p = p.WithResultSink(sink)
		logger.Info("result events enabled", "topic", cfg.KafkaResultsTopic)
	}

	var report *pipeline.Report
	switch s {
	case stageFetch:
		report, err = p.Fetch(c.Context)
	case stageConvert:
		report, err = p.Convert(c.Context)
	default:
		report, err = p.Run(c.Context)
	}
	if err != nil {
		return err
	}

	report.Log(logger)
	if report.Failed() {
		return cli.Exit(fmt.Sprintf("%d fetches and %d conversions failed; see log for the re-run subset",
			len(report.FetchFailures), len(report.ConvertFailures)), 2)
	}
	return nil
}

// loadConfig reads the environment config, applies CLI flag overrides, and
// validates the combined result.
func loadConfig(c *cli.Context, s stage) (*config.Config, error) {
	cfg := config.LoadDefaults()
	cfg.LocalOnly = s == stageConvert

	if v := c.String("station"); v != "" {
		cfg.Station = v
	}
	if v := c.String("date"); v != "" {
		cfg.Date = v
	}
	if v := c.String("prefix"); v != "" {
		cfg.Prefix = v
	}
	if v := c.String("bucket"); v != "" {
		cfg.Bucket = v
	}
	if v := c.String("window-start"); v != "" {
		cfg.WindowStart = v
	}
	if v := c.String("window-end"); v != "" {
		cfg.WindowEnd = v
	}
	if v := c.String("input-root"); v != "" {
		cfg.InputRoot = v
	}
	if v := c.String("output-root"); v != "" {
		cfg.OutputRoot = v
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("skip-existing") {
		cfg.SkipExisting = c.Bool("skip-existing")
	}
	if c.IsSet("strict-names") {
		cfg.StrictNames = c.Bool("strict-names")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
