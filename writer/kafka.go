package writer

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"cotflow/internal/models"
	"cotflow/logger"
)

// snapshotEvent is the wire form of a published dataset replacement.
// Consumers use it to invalidate their own caches and re-read the
// canonical dataset.
type snapshotEvent struct {
	SnapshotID  string `json:"snapshot_id"`
	Key         string `json:"key"`
	SourceURL   string `json:"source_url"`
	Layout      string `json:"layout"`
	RecordCount int    `json:"record_count"`
	IngestedAt  string `json:"ingested_at"`
}

// KafkaWriter announces published snapshots on a Kafka topic.
type KafkaWriter struct {
	writer *kafka.Writer
	log    *logger.Log
}

func NewKafkaWriter(brokers []string, topic string) (*KafkaWriter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	return &KafkaWriter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		log: logger.GetLogger(),
	}, nil
}

// Publish emits one event describing the snapshot that just replaced
// the dataset.
func (w *KafkaWriter) Publish(ctx context.Context, snapshot *models.Snapshot) error {
	event := snapshotEvent{
		SnapshotID:  snapshot.ID,
		Key:         snapshot.Key,
		SourceURL:   snapshot.SourceURL,
		Layout:      snapshot.Layout,
		RecordCount: len(snapshot.Records),
		IngestedAt:  snapshot.IngestedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(snapshot.Key),
		Value: payload,
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish snapshot event: %w", err)
	}

	logger.RecordSinkWrite("kafka", len(payload))
	w.log.WithComponent("kafka_writer").WithFields(logger.Fields{
		"snapshot_id":  snapshot.ID,
		"record_count": len(snapshot.Records),
	}).Info("snapshot event published")
	return nil
}

func (w *KafkaWriter) Close() error {
	return w.writer.Close()
}
