package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
)

// updateEvent is the payload announced on each ingestion so downstream
// consumers (sync jobs, caches) can react without polling.
type updateEvent struct {
	Teams     int       `json:"teams"`
	Accesses  int       `json:"accesses"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KafkaSink announces matrix updates on a Kafka topic.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and pings them so misconfiguration
// surfaces at startup rather than on the first upload.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Mirror(ctx context.Context, snap matrix.Snapshot) error {
	payload, err := json.Marshal(updateEvent{
		Teams:     len(snap.Matrix),
		Accesses:  snap.Matrix.AccessCount(),
		UpdatedAt: snap.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode update event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte("matrix-update"),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce update event: %w", err)
	}
	return nil
}

// Close releases the Kafka client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
