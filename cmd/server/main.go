package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	allocationhandler "keyworker/internal/allocation/handler"
	allocationservice "keyworker/internal/allocation/service"
	allocationstore "keyworker/internal/allocation/store"
	"keyworker/internal/deallocation"
	"keyworker/internal/events/listener"
	"keyworker/internal/gateway"
	jwttoken "keyworker/internal/jwt_token"
	"keyworker/internal/platform/config"
	"keyworker/internal/platform/httpserver"
	"keyworker/internal/platform/kafka/admin"
	"keyworker/internal/platform/kafka/consumer"
	"keyworker/internal/platform/kafka/producer"
	"keyworker/internal/platform/logger"
	"keyworker/internal/platform/metrics"
	"keyworker/internal/platform/middleware"
	"keyworker/internal/platform/postgres"
	"keyworker/internal/platform/redis"
	"keyworker/internal/prisonconfig"
	configstore "keyworker/internal/prisonconfig/store"
	"keyworker/internal/recordedevent/notesync"
	eventstore "keyworker/internal/recordedevent/store"
	"keyworker/internal/referencedata"
	referencehandler "keyworker/internal/referencedata/handler"
	"keyworker/internal/statistics/calculator"
	statshandler "keyworker/internal/statistics/handler"
	"keyworker/internal/statistics/scheduler"
	statstore "keyworker/internal/statistics/store"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/audit/publisher"
	auditmemory "keyworker/pkg/platform/audit/store/memory"
	auditpostgres "keyworker/pkg/platform/audit/store/postgres"
	"keyworker/pkg/platform/tx"
)

const (
	roleAllocationsRW = "ROLE_KEYWORKER_RW"
	roleStatisticsRW  = "ROLE_KEYWORKER_STATS_RW"
	roleSubjectAccess = "ROLE_SAR_DATA_ACCESS"
)

// stores bundles the persistence chosen at startup.
type stores struct {
	allocations interface {
		allocationservice.Store
		deallocation.AllocationStore
		calculator.Allocations
	}
	recordedEvents interface {
		notesync.Store
		deallocation.RecordedEventStore
		calculator.RecordedEvents
	}
	statistics interface {
		calculator.Store
		statshandler.Store
	}
	configuration interface {
		calculator.Configuration
		scheduler.Prisons
		prisonconfig.Writer
	}
	audit audit.Store
	tx    tx.Runner
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, m); err != nil {
		log.Error("keyworker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, m *metrics.Metrics) error {
	st, closeDB, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDB()

	if cfg.Statistics.PrisonConfigFile != "" {
		seed, err := prisonconfig.LoadSeedFile(cfg.Statistics.PrisonConfigFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, st.configuration); err != nil {
			return err
		}
		log.Info("prison configuration seeded", "prisons", len(seed.Prisons), "staff", len(seed.Staff))
	}

	auditor := publisher.NewPublisher(st.audit, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	defer auditor.Close()

	gw := newGateways(cfg.Gateways, log, m)
	var prisons deallocation.PrisonLookup = gw.register
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		prisons = gateway.NewCachedPrisonLookup(gw.register, rdb.Client, cfg.Redis.CacheTTL, log)
	}

	catalog := referencedata.NewCatalog()
	engine := deallocation.New(deallocation.Deps{
		Allocations:    st.allocations,
		RecordedEvents: st.recordedEvents,
		Tx:             st.tx,
		Catalog:        catalog,
		Prisons:        prisons,
		Movements:      gw.prisonAPI,
		Complexity:     gw.complexity,
		Audit:          auditor,
	},
		deallocation.WithLogger(log),
		deallocation.WithMetrics(m),
		deallocation.WithAuditor(auditor),
	)
	notes := notesync.New(gw.caseNotes, st.recordedEvents, st.tx, notesync.WithLogger(log))
	calc := calculator.New(calculator.Deps{
		Store:          st.statistics,
		Tx:             st.tx,
		Prisoners:      gw.prisonerSearch,
		Complexity:     gw.complexity,
		Staff:          gw.prisonAPI,
		CaseNotes:      gw.caseNotes,
		Allocations:    st.allocations,
		RecordedEvents: st.recordedEvents,
		Configuration:  st.configuration,
	},
		calculator.WithLogger(log),
		calculator.WithMetrics(m),
		calculator.WithAuditor(auditor),
	)
	events := listener.NewHandler(engine, notes, calc,
		listener.WithLogger(log),
		listener.WithMetrics(m),
		listener.WithAuditor(auditor),
	)

	var pub scheduler.Publisher = scheduler.NewLocalPublisher(events, log)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, shutdown, err := startKafka(ctx, cfg.Kafka, events, log)
		if err != nil {
			return err
		}
		defer shutdown()
		pub = kafkaPub
	} else {
		log.Warn("no kafka brokers configured, statistics events are handled in process")
	}

	sched := scheduler.New(st.configuration, pub,
		scheduler.WithInterval(cfg.Statistics.ScheduleInterval),
		scheduler.WithLogger(log),
		scheduler.WithMetrics(m),
	)
	go sched.Run(ctx)

	allocations := allocationservice.New(st.allocations, st.tx, catalog,
		allocationservice.WithLogger(log),
		allocationservice.WithMetrics(m),
		allocationservice.WithAuditor(auditor),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "")
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwt, log))
		referencehandler.New(catalog).Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(roleAllocationsRW, roleSubjectAccess))
			allocationhandler.New(allocations, log).Register(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(roleStatisticsRW, roleAllocationsRW))
			statshandler.New(st.statistics, sched, log).Register(r)
		})
	})

	return httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, r), log)
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (stores, func(), error) {
	if cfg.URL == "" {
		log.Warn("no database configured, using in-memory stores")
		return stores{
			allocations:    allocationstore.NewInMemory(),
			recordedEvents: eventstore.NewInMemory(),
			statistics:     statstore.NewInMemory(),
			configuration:  configstore.NewInMemory(),
			audit:          auditmemory.NewInMemoryStore(),
			tx:             tx.NewLocalRunner(),
		}, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return stores{}, nil, err
	}
	return postgresStores(db), func() { _ = db.Close() }, nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		allocations:    allocationstore.NewPostgres(db),
		recordedEvents: eventstore.NewPostgres(db),
		statistics:     statstore.NewPostgres(db),
		configuration:  configstore.NewPostgres(db),
		audit:          auditpostgres.New(db),
		tx:             postgres.NewTxRunner(db),
	}
}

// startKafka creates the topics, starts the domain event consumer and
// returns the statistics publisher.
func startKafka(ctx context.Context, cfg config.KafkaConfig, handler consumer.Handler, log *slog.Logger) (scheduler.Publisher, func(), error) {
	const dlq = ".dlq"
	topics := []string{cfg.DomainEventsTopic, cfg.StatisticsTopic, cfg.DomainEventsTopic + dlq, cfg.StatisticsTopic + dlq}
	if err := admin.EnsureTopics(ctx, cfg.Brokers, 3, topics...); err != nil {
		return nil, nil, err
	}

	router := listener.NewRouter(log, nil)
	router.Register(cfg.DomainEventsTopic, handler)
	router.Register(cfg.StatisticsTopic, handler)

	cons, err := consumer.New(consumer.Config{
		Brokers:          cfg.Brokers,
		Group:            cfg.ConsumerGroup,
		Topics:           router.Topics(),
		DeadLetterSuffix: dlq,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	prod, err := producer.New(cfg.Brokers, cfg.PublishBatchSize)
	if err != nil {
		cons.Close()
		return nil, nil, err
	}

	go func() {
		if err := cons.Run(ctx, router); err != nil {
			log.Error("domain event consumer stopped", "error", err)
		}
	}()

	return scheduler.NewKafkaPublisher(prod, cfg.StatisticsTopic), func() {
		cons.Close()
		prod.Close()
	}, nil
}
