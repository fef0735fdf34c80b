package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/couchcryptid/flex-control/internal/retrieval"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher hands retrieval requests to the fetch workers by producing them to
// a Kafka topic. It implements retrieval.Backend.
type Publisher struct {
	writer  *kafkago.Writer
	backend string
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for topic. backend is
// retrieval.BackendPublic or retrieval.BackendMARS and is sent as a header so
// the workers know which archive interface to use.
func NewPublisher(brokers []string, topic, backend string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, backend: backend, logger: logger}
}

// Retrieve publishes req. It returns once the brokers have acknowledged it.
func (p *Publisher) Retrieve(ctx context.Context, req *domain.Request) error {
	msg, err := serializeToMessage(req, p.backend, retrieval.RunID(ctx))
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish request to %s: %w", p.writer.Topic, err)
	}
	p.logger.Debug("request published", "topic", p.writer.Topic, "key", string(msg.Key))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a request into a Kafka message keyed by a fresh UUID.
func serializeToMessage(req *domain.Request, backend, runID string) (kafkago.Message, error) {
	data, err := req.MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize request: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "backend", Value: []byte(backend)},
	}
	if runID != "" {
		headers = append(headers, kafkago.Header{Key: "run_id", Value: []byte(runID)})
	}
	if class, ok := req.Get("class"); ok {
		headers = append(headers, kafkago.Header{Key: "class", Value: []byte(class)})
	}
	return kafkago.Message{
		Key:     []byte(uuid.NewString()),
		Value:   data,
		Headers: headers,
	}, nil
}
