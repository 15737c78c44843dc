// Package scheduler fans the daily statistics calculation out into one
// calculate event per enabled prison and policy.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"keyworker/internal/events"
	"keyworker/internal/platform/kafka/consumer"
	"keyworker/internal/platform/kafka/producer"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/prisonconfig"
	"keyworker/pkg/domain"
	"keyworker/pkg/requestcontext"
)

// Prisons lists prisons enabled for a policy.
type Prisons interface {
	ListEnabled(ctx context.Context, policy domain.Policy) ([]prisonconfig.PrisonConfig, error)
}

// Publisher delivers calculate events.
type Publisher interface {
	Publish(ctx context.Context, envelopes []events.Envelope) error
}

// Scheduler emits calculate events for yesterday on each tick.
type Scheduler struct {
	prisons   Prisons
	publisher Publisher
	policies  []domain.Policy
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithInterval sets the tick period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func New(prisons Prisons, publisher Publisher, opts ...Option) *Scheduler {
	s := &Scheduler{
		prisons:   prisons,
		publisher: publisher,
		policies:  domain.AllPolicies(),
		interval:  24 * time.Hour,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger publishes one calculate event per enabled prison and policy for
// date. It returns how many events were published.
func (s *Scheduler) Trigger(ctx context.Context, date time.Time) (int, error) {
	now := requestcontext.Now(ctx)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var envelopes []events.Envelope
	for _, policy := range s.policies {
		prisons, err := s.prisons.ListEnabled(ctx, policy)
		if err != nil {
			return 0, fmt.Errorf("list prisons enabled for %s: %w", policy, err)
		}
		for _, p := range prisons {
			envelopes = append(envelopes, events.NewCalculatePrisonStats(p.PrisonCode, policy, day, now))
		}
	}
	if len(envelopes) == 0 {
		s.logger.InfoContext(ctx, "no prisons enabled, nothing to calculate", "date", day.Format(time.DateOnly))
		return 0, nil
	}

	if err := s.publisher.Publish(ctx, envelopes); err != nil {
		return 0, fmt.Errorf("publish statistics events: %w", err)
	}
	s.metrics.AddStatsEventsProduced(len(envelopes))
	s.logger.InfoContext(ctx, "statistics calculation triggered",
		"date", day.Format(time.DateOnly),
		"events", len(envelopes),
	)
	return len(envelopes), nil
}

// Run triggers yesterday's calculation once on start and then every
// interval until ctx is done. Calculation is at-most-once per prison, day
// and policy, so a restart re-triggering a day already done is a no-op.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	tickCtx := requestcontext.WithUsername(ctx, requestcontext.SystemUsername)
	yesterday := s.now().UTC().AddDate(0, 0, -1)
	if _, err := s.Trigger(tickCtx, yesterday); err != nil {
		s.logger.ErrorContext(ctx, "scheduled statistics trigger failed", "error", err)
	}
}

// KafkaPublisher writes events to the statistics topic keyed by prison so
// each prison's events stay ordered.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, envelopes []events.Envelope) error {
	records := make([]producer.Record, 0, len(envelopes))
	for _, env := range envelopes {
		body, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode %s: %w", env.EventType, err)
		}
		records = append(records, producer.Record{
			Key:     []byte(prisonKey(env)),
			Value:   body,
			Headers: map[string]string{"eventType": env.EventType},
		})
	}
	return k.producer.PublishBatch(ctx, k.topic, records)
}

func prisonKey(env events.Envelope) string {
	var info struct {
		PrisonCode string `json:"prisonCode"`
	}
	_ = json.Unmarshal(env.AdditionalInformation, &info)
	return info.PrisonCode
}

// LocalPublisher hands events straight to a handler. It stands in for Kafka
// when no brokers are configured.
type LocalPublisher struct {
	handler consumer.Handler
	logger  *slog.Logger
}

func NewLocalPublisher(handler consumer.Handler, logger *slog.Logger) *LocalPublisher {
	return &LocalPublisher{handler: handler, logger: logger}
}

// Publish handles every event in order. One failed event does not stop the
// rest; failures are logged.
func (l *LocalPublisher) Publish(ctx context.Context, envelopes []events.Envelope) error {
	for i, env := range envelopes {
		body, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode %s: %w", env.EventType, err)
		}
		msg := &consumer.Message{
			Topic:     "local",
			Offset:    int64(i),
			Key:       []byte(prisonKey(env)),
			Value:     body,
			Timestamp: requestcontext.Now(ctx),
		}
		if err := l.handler.Handle(ctx, msg); err != nil {
			l.logger.ErrorContext(ctx, "local statistics event failed",
				"prison_code", string(msg.Key),
				"error", err,
			)
		}
	}
	return nil
}
