package repository

import (
	"context"
	"fmt"

	"QuantSift/internal/domain/models"
	pkgkafka "QuantSift/pkg/kafka"
	applogger "QuantSift/pkg/logger"
)

// KafkaRecordPublisher ships reconciled records to a Kafka topic, keyed by
// ticker so consumers see per-instrument ordering.
type KafkaRecordPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaRecordPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaRecordPublisher {
	return &KafkaRecordPublisher{producer: producer, topic: topic, l: l}
}

type recordEnvelope struct {
	RunID  string                   `json:"run_id"`
	Record *models.ReconciledRecord `json:"record"`
}

func (p *KafkaRecordPublisher) PublishRecords(ctx context.Context, runID string, recs []*models.ReconciledRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(rec.Ticker),
			Value: recordEnvelope{RunID: runID, Record: rec},
		})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish records %s: %w", runID, err)
	}
	p.l.Info("records published",
		applogger.String("run_id", runID),
		applogger.String("topic", p.topic),
		applogger.Int("count", len(recs)),
	)
	return nil
}

func (p *KafkaRecordPublisher) Close() error {
	return p.producer.Close()
}
