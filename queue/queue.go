// Package queue carries ledger lines between the importer and the loader
// through a kafka topic.
package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ParseBrokers splits a comma separated list of broker addresses.
func ParseBrokers(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EnsureTopic attempts to create the topic. Failures are logged only: the
// topic usually exists already.
func EnsureTopic(ctx context.Context, broker, topic string, logger *zap.Logger) {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		logger.Warn("dialing broker", zap.String("broker", broker), zap.Error(err))
		return
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug("creating topic", zap.String("topic", topic), zap.Error(err))
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer is a ledger.Sender writing each payload as one kafka message.
type Producer struct {
	w messageWriter
}

var _ ledger.Sender = (*Producer)(nil)

// NewProducer creates a Producer writing to topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// Send writes payload to the topic.
func (p *Producer) Send(ctx context.Context, payload string) error {
	return p.w.WriteMessages(ctx, kafka.Message{Value: []byte(payload)})
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error { return p.w.Close() }

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one payload.
type Handler func(ctx context.Context, payload string) error

// Consumer reads payloads from a topic and hands them to a Handler, one at a
// time.
//
// A message is committed once handled. Payloads that cannot be decoded are
// logged and committed too, as retrying them cannot succeed. Any other
// handler error stops the consumer without committing, so that the message
// is delivered again.
type Consumer struct {
	r      messageReader
	Logger *zap.Logger
}

// NewConsumer creates a Consumer on topic, as a member of groupID.
func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1e6,
			MaxWait:  500 * time.Millisecond,
		}),
		Logger: logger,
	}
}

// Run consumes messages until ctx is done or handle fails. It returns nil when
// ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	defer c.r.Close()
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fields := []zap.Field{zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset)}
		err = handle(ctx, string(m.Value))
		var perr *ledger.ParseError
		switch {
		case err == nil:
			c.Logger.Debug("message loaded", fields...)
		case errors.As(err, &perr):
			c.Logger.Warn("bad message", append(fields, zap.String("field", perr.Field), zap.Error(err))...)
		default:
			c.Logger.Error("loading message", append(fields, zap.Error(err))...)
			return err
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
