// Package consumer runs a franz-go consumer group and hands each record to a
// Handler. Records are committed after the handler returns; a handler error
// sends the record to the dead-letter topic before committing so one poison
// message cannot stall the partition. A record that can be neither handled
// nor dead-lettered is left uncommitted and its partition is rewound to it.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a transport-neutral view of a consumed record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. Returning an error routes the message to the
// dead-letter topic.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error { return f(ctx, msg) }

// Config for a consumer group.
type Config struct {
	Brokers []string
	Group   string
	Topics  []string
	// DeadLetterSuffix is appended to the source topic name. Empty disables
	// dead-lettering and failed records are committed after logging.
	DeadLetterSuffix string
}

// redeliveryPause spaces out retries of a partition that was rewound.
const redeliveryPause = time.Second

type deadLetterProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Consumer owns a kgo client subscribed to the configured topics.
type Consumer struct {
	client *kgo.Client
	dlq    deadLetterProducer
	cfg    Config
	logger *slog.Logger
}

// New connects a consumer group client.
func New(cfg Config, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, dlq: client, cfg: cfg, logger: logger}, nil
}

// Run polls until ctx is cancelled or the client is closed. Each record of a
// fetch is handled in order on the calling goroutine.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var done []*kgo.Record
		rewind := make(map[string]map[int32]kgo.EpochOffset)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			handled, failed := c.handlePartition(ctx, handler, p.Records)
			done = append(done, handled...)
			if failed != nil {
				if rewind[failed.Topic] == nil {
					rewind[failed.Topic] = make(map[int32]kgo.EpochOffset)
				}
				rewind[failed.Topic][failed.Partition] = kgo.EpochOffset{Epoch: failed.LeaderEpoch, Offset: failed.Offset}
			}
		})
		if len(done) > 0 {
			if err := c.client.CommitRecords(ctx, done...); err != nil {
				c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
			}
		}
		if len(rewind) > 0 {
			c.client.SetOffsets(rewind)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(redeliveryPause):
			}
		}
	}
}

// handlePartition handles records in offset order. It stops at the first
// record that failed and could not be dead-lettered, returning the records
// before it as done.
func (c *Consumer) handlePartition(ctx context.Context, handler Handler, records []*kgo.Record) (done []*kgo.Record, failed *kgo.Record) {
	for _, rec := range records {
		if err := handler.Handle(ctx, toMessage(rec)); err != nil {
			c.logger.ErrorContext(ctx, "message handling failed",
				"topic", rec.Topic,
				"partition", rec.Partition,
				"offset", rec.Offset,
				"error", err,
			)
			if err := c.deadLetter(ctx, rec, err); err != nil {
				c.logger.ErrorContext(ctx, "dead letter publish failed, record will be redelivered",
					"topic", rec.Topic,
					"partition", rec.Partition,
					"offset", rec.Offset,
					"error", err,
				)
				return done, rec
			}
		}
		done = append(done, rec)
	}
	return done, nil
}

func (c *Consumer) deadLetter(ctx context.Context, rec *kgo.Record, cause error) error {
	if c.cfg.DeadLetterSuffix == "" {
		return nil
	}
	dlq := &kgo.Record{
		Topic: rec.Topic + c.cfg.DeadLetterSuffix,
		Key:   rec.Key,
		Value: rec.Value,
		Headers: append(append([]kgo.RecordHeader{}, rec.Headers...),
			kgo.RecordHeader{Key: "x-failure", Value: []byte(cause.Error())}),
	}
	if err := c.dlq.ProduceSync(ctx, dlq).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", dlq.Topic, err)
	}
	return nil
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}

func toMessage(rec *kgo.Record) *Message {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		Headers:   headers,
		Timestamp: rec.Timestamp,
	}
}
