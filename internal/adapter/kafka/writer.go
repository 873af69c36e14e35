package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/bristol-crime-etl/internal/config"
	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// publishBatchSize bounds the number of messages per WriteMessages call.
const publishBatchSize = 500

// Publisher produces cleaned crime rows to a Kafka topic.
// It implements pipeline.RowPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured clean topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaCleanTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one message per row of t, in row order.
func (p *Publisher) Publish(ctx context.Context, t domain.Table) error {
	msgs := make([]kafkago.Message, 0, publishBatchSize)
	for i := range t.Rows {
		msg, err := rowToMessage(t.Columns, t.Rows[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == publishBatchSize {
			if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish rows: %w", err)
			}
			msgs = msgs[:0]
		}
	}
	if len(msgs) > 0 {
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish rows: %w", err)
		}
	}
	p.logger.Info("cleaned rows published", "topic", p.writer.Topic, "rows", len(t.Rows))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// rowToMessage marshals a row into a Kafka message keyed by the crime's
// persistent_id, falling back to its id. Missing values are omitted.
func rowToMessage(columns []string, row domain.Row) (kafkago.Message, error) {
	value := make(map[string]string, len(row))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			value[c] = v
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize crime row: %w", err)
	}

	key := row["persistent_id"]
	if key == "" {
		key = row["id"]
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: domain.ColumnCategory, Value: []byte(row[domain.ColumnCategory])},
			{Key: domain.ColumnMonth, Value: []byte(row[domain.ColumnMonth])},
		},
	}, nil
}
