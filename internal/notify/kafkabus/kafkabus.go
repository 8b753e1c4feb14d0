// Package kafkabus publishes lifecycle notifications to a Kafka topic so
// external consumers observe the same lifecycle the local reducers do.
package kafkabus

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
)

// messageWriter is the subset of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher forwards lifecycle notifications to a Kafka topic as JSON
// envelopes keyed by record id. Publish failures are diagnostic only; the
// lifecycle never stalls on the broker.
type Publisher struct {
	writer messageWriter
	sink   diag.Sink
}

// NewPublisher creates a publisher writing to topic on the given brokers.
func NewPublisher(brokers []string, topic string, sink diag.Sink) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		sink: sink,
	}
}

// envelope is the wire form of one notification.
type envelope struct {
	Type     string          `json:"type"`
	RecordID string          `json:"record_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Dispatch implements notify.Dispatcher.
func (p *Publisher) Dispatch(n notify.Notification) {
	if p == nil || p.writer == nil {
		return
	}
	value, key, err := encode(n)
	if err != nil {
		diag.Notice(p.sink, "encode %s for kafka: %v", n.Type, err)
		return
	}
	msg := kafka.Message{Value: value}
	if key != "" {
		msg.Key = []byte(key)
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		diag.Notice(p.sink, "publish %s: %v", n.Type, err)
	}
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encode(n notify.Notification) (value []byte, key string, err error) {
	payload, err := mirror.PayloadJSON(n.Payload)
	if err != nil {
		return nil, "", err
	}
	key = mirror.PayloadRecordID(n.Payload)
	value, err = json.Marshal(envelope{
		Type:     string(n.Type),
		RecordID: key,
		Payload:  payload,
	})
	if err != nil {
		return nil, "", err
	}
	return value, key, nil
}
