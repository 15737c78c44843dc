// Package producer publishes records with franz-go in bounded batches.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Record is one message to publish.
type Record struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer writes to Kafka synchronously, batchSize records per call.
type Producer struct {
	client    *kgo.Client
	batchSize int
}

// New connects a producer client.
func New(brokers []string, batchSize int) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, batchSize: batchSize}, nil
}

// PublishBatch sends records to topic in chunks. It stops at the first
// failed chunk; earlier chunks stay published.
func (p *Producer) PublishBatch(ctx context.Context, topic string, records []Record) error {
	for _, chunk := range Chunk(records, p.batchSize) {
		out := make([]*kgo.Record, 0, len(chunk))
		for _, r := range chunk {
			rec := &kgo.Record{Topic: topic, Key: r.Key, Value: r.Value}
			for k, v := range r.Headers {
				rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
			}
			out = append(out, rec)
		}
		if err := p.client.ProduceSync(ctx, out...).FirstErr(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}
	return nil
}

// Close flushes and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}

// Chunk splits items into consecutive slices of at most size elements.
// A non-positive size yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
