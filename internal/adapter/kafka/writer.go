package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-risk-etl/internal/config"
	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

// LatestKey keys the snapshot message so a compacted topic keeps only the
// newest analysis.
const LatestKey = "latest"

// Writer publishes analysis snapshots and run-history entries to Kafka.
// It implements pipeline.ResultStore.
type Writer struct {
	writer        *kafkago.Writer
	snapshotTopic string
	historyTopic  string
	logger        *slog.Logger
}

// NewWriter creates a Kafka producer for the snapshot and history topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	// Topic is set per message because the writer serves two topics.
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{
		writer:        w,
		snapshotTopic: cfg.KafkaSnapshotTopic,
		historyTopic:  cfg.KafkaHistoryTopic,
		logger:        logger,
	}
}

// SaveLatest publishes the report to the snapshot topic under LatestKey.
func (w *Writer) SaveLatest(ctx context.Context, report domain.Report) error {
	msg, err := serializeReport(w.snapshotTopic, report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish latest analysis: %w", err)
	}
	w.logger.Debug("latest analysis published", "topic", w.snapshotTopic, "regions", len(report.Probabilities))
	return nil
}

// AppendRun publishes one run-history entry keyed by run ID.
func (w *Writer) AppendRun(ctx context.Context, record domain.RunRecord) error {
	msg, err := serializeRunRecord(w.historyTopic, record)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeReport marshals a Report into a snapshot message.
func serializeReport(topic string, report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis report: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(LatestKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "triggered_by", Value: []byte(report.TriggeredBy)},
			{Key: "updated_at", Value: []byte(report.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}

// serializeRunRecord marshals a RunRecord into a history message.
func serializeRunRecord(topic string, record domain.RunRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run record: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(record.Status)},
			{Key: "timestamp", Value: []byte(record.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
