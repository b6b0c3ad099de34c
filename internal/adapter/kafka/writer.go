package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Dataset header values.
const (
	DatasetNotam    = "notam"
	DatasetMetadata = "metadata"
)

// MetadataKey keys the per-run summary message.
const MetadataKey = "metadata"

// Writer publishes run snapshots to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Summary is the value of the per-run metadata message.
type Summary struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Metadata    domain.Metadata `json:"metadata"`
	OutageCount int             `json:"outage_count"`
}

// Publish writes every outage followed by one summary message in a single
// WriteMessages call.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	w.logger.Debug("snapshot published", "run_id", snap.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func snapshotMessages(snap domain.Snapshot) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(snap.Outages)+1)
	for _, o := range snap.Outages {
		data, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("serialize outage: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(outageKey(o)),
			Value:   data,
			Headers: headers(DatasetNotam, snap),
		})
	}

	data, err := json.Marshal(Summary{
		RunID:       snap.RunID,
		GeneratedAt: snap.GeneratedAt.UTC(),
		Metadata:    snap.Metadata,
		OutageCount: len(snap.Outages),
	})
	if err != nil {
		return nil, fmt.Errorf("serialize summary: %w", err)
	}
	msgs = append(msgs, kafkago.Message{
		Key:     []byte(MetadataKey),
		Value:   data,
		Headers: headers(DatasetMetadata, snap),
	})
	return msgs, nil
}

func headers(dataset string, snap domain.Snapshot) []kafkago.Header {
	return []kafkago.Header{
		{Key: "dataset", Value: []byte(dataset)},
		{Key: "run_id", Value: []byte(snap.RunID)},
		{Key: "generated_at", Value: []byte(snap.GeneratedAt.UTC().Format(time.RFC3339))},
	}
}

// outageKey is a deterministic ID from position and text, so the same
// bulletin seen on consecutive runs lands on the same key.
func outageKey(o domain.Outage) string {
	input := fmt.Sprintf("%.6f|%.6f|%s", o.Lat, o.Lon, o.Text)
	hash := sha256.Sum256([]byte(input))
	return "notam-" + hex.EncodeToString(hash[:8])
}
