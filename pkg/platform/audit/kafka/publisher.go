// Package kafka publishes audit events to a Kafka topic. Kafka is the
// durable audit sink; consumers downstream route by event category.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"capture-gateway/pkg/platform/audit"
)

// Publisher emits audit events to a single topic, keyed by document id so
// one document's trail stays ordered within a partition.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", resp.Topic, resp.Err)
		}
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// payload is the JSON structure written to the topic.
type payload struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Timestamp  string `json:"timestamp"`
	Action     string `json:"action"`
	ActorID    string `json:"actor_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	UploadID   string `json:"upload_id,omitempty"`
	Version    int    `json:"version,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	Device     string `json:"device,omitempty"`
}

// Emit publishes one event synchronously. Category is always derived from
// the action so the routing map stays the single source of truth.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	body, err := json.Marshal(payload{
		ID:         uuid.NewString(),
		Category:   string(audit.AuditEvent(event.Action).Category()),
		Timestamp:  ts.Format(time.RFC3339Nano),
		Action:     event.Action,
		ActorID:    event.ActorID,
		DocumentID: event.DocumentID,
		UploadID:   event.UploadID,
		Version:    event.Version,
		Reason:     event.Reason,
		RequestID:  event.RequestID,
		ClientIP:   event.ClientIP,
		Device:     event.Device,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.DocumentID),
		Value: body,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
