// Package kafka publishes per-file conversion results so downstream
// dashboards can track nightly runs. Producer-only: a batch fetcher has no
// message source.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/IsaacEarlJr/tigerRAD/internal/config"
	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// Writer produces conversion-result events to the results topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured results topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishResults serializes and publishes all records in a single
// WriteMessages call.
func (w *Writer) PublishResults(ctx context.Context, records []domain.ConversionRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ConversionRecord into a Kafka message keyed
// by the input basename.
func serializeToMessage(rec domain.ConversionRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize conversion record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(filepath.Base(rec.Input)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(rec.Station)},
			{Key: "outcome", Value: []byte(rec.Outcome)},
			{Key: "completed_at", Value: []byte(rec.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
