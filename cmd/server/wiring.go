package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"onboarding/internal/idempotency"
	onboardingmetrics "onboarding/internal/onboarding/metrics"
	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/service"
	"onboarding/internal/onboarding/store"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/kafka"
	"onboarding/internal/platform/postgres"
	redisclient "onboarding/internal/platform/redis"
	"onboarding/internal/providers"
	"onboarding/internal/ratelimit"
	httptransport "onboarding/internal/transport/http"
	"onboarding/pkg/platform/audit"
	"onboarding/pkg/platform/audit/publishers/compliance"
	auditmemory "onboarding/pkg/platform/audit/store/memory"
	auditpostgres "onboarding/pkg/platform/audit/store/postgres"
	"onboarding/pkg/platform/audit/worker"
)

// infra holds the backing services selected by configuration.
type infra struct {
	store      service.Store
	auditStore audit.Store
	outbox     *auditpostgres.Store
	db         *sql.DB
	redis      *redisclient.Client
	producer   *kafka.Producer
}

func buildInfra(ctx context.Context, cfg *config.Config, log *slog.Logger, health *httptransport.Health) (_ *infra, err error) {
	i := &infra{}
	defer func() {
		if err != nil {
			i.Close()
		}
	}()

	if cfg.Database.URL == "" {
		log.Info("DATABASE_URL not set, using in-memory store")
		i.store = store.NewInMemory()
		i.auditStore = auditmemory.NewInMemoryStore()
		health.Add("store", func(context.Context) error { return nil })
	} else {
		i.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err = postgres.Migrate(ctx, i.db, store.Migrations()); err != nil {
				return nil, err
			}
		}
		i.store = store.NewPostgres(i.db, cfg.Database.TxTimeout)
		i.outbox = auditpostgres.New(i.db)
		i.auditStore = i.outbox
		health.Add("store", i.db.PingContext)
		log.Info("using postgres store", "driver", cfg.Database.Driver)
	}

	i.redis, err = redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if i.redis != nil {
		health.Add("redis", i.redis.Health)
	}

	i.producer, err = kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if i.producer != nil {
		if i.outbox == nil {
			log.Warn("KAFKA_BROKERS set without DATABASE_URL, audit relay disabled")
			i.producer.Close()
			i.producer = nil
		} else {
			if err = i.producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
				return nil, err
			}
			health.Add("kafka", i.producer.Health)
		}
	}
	return i, nil
}

// auditRelay returns the outbox worker, or nil when events stay in the
// outbox table only.
func (i *infra) auditRelay(cfg *config.Config, log *slog.Logger) *worker.Worker {
	if i.outbox == nil || i.producer == nil {
		return nil
	}
	return worker.New(i.outbox, i.producer,
		worker.WithLogger(log),
		worker.WithInterval(cfg.Kafka.RelayInterval),
		worker.WithBatchSize(cfg.Kafka.RelayBatchSize),
	)
}

func (i *infra) Close() {
	if i.producer != nil {
		i.producer.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func buildService(cfg *config.Config, log *slog.Logger, reg prometheus.Registerer, i *infra) (*service.Service, error) {
	oc := cfg.Onboarding
	latency := oc.ProviderLatency

	kyc, err := providers.NewKYC(
		providers.WithKYCOutcome(models.KYCStatus(oc.KYCOutcome)),
		providers.WithPollOutcome(models.KYCStatus(oc.KYCPollOutcome)),
		providers.WithKYCLatency(latency),
	)
	if err != nil {
		return nil, fmt.Errorf("configure kyc provider: %w", err)
	}
	broker, err := providers.NewBroker(models.BrokerStatus(oc.BrokerOutcome), latency)
	if err != nil {
		return nil, fmt.Errorf("configure broker provider: %w", err)
	}

	publisher := compliance.New(i.auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)

	return service.New(i.store,
		service.Collaborators{
			KYC:        kyc,
			Broker:     broker,
			TwoFactor:  providers.NewTwoFactor(latency, 0),
			Signatures: providers.NewSignatureVerifier(),
			Wallets:    providers.NewWalletGenerator(latency),
		},
		service.WithLogger(log),
		service.WithMetrics(onboardingmetrics.New(reg)),
		service.WithAuditPublisher(publisher),
		service.WithLegalVersions(models.LegalVersions{
			TOS:     oc.TOSVersion,
			Privacy: oc.PrivacyVersion,
			Risk:    oc.RiskVersion,
		}),
		service.WithCollaboratorTimeout(oc.CollaboratorTimeout),
		service.WithBreakers(oc.BreakerFailures, oc.BreakerCooldown),
	)
}

func buildIdempotency(cfg *config.Config, log *slog.Logger, i *infra) *idempotency.Middleware {
	var st idempotency.Store = idempotency.NewInMemoryStore()
	if i.redis != nil {
		st = idempotency.NewRedisStore(i.redis.Client)
	}
	return idempotency.New(st,
		idempotency.WithTTL(cfg.Onboarding.IdempotencyTTL),
		idempotency.WithLogger(log),
	)
}

func buildRateLimit(cfg *config.Config, log *slog.Logger, i *infra) *ratelimit.Middleware {
	rl := cfg.RateLimit
	var st ratelimit.BucketStore = ratelimit.NewInMemoryBucketStore()
	if i.redis != nil {
		st = ratelimit.NewRedisBucketStore(i.redis.Client)
	}
	return ratelimit.New(st,
		ratelimit.WithLogger(log),
		ratelimit.WithDisabled(!rl.Enabled),
		ratelimit.WithLimit(ratelimit.ClassRead, ratelimit.Limit{Requests: rl.ReadPerWindow, Window: rl.Window}),
		ratelimit.WithLimit(ratelimit.ClassWrite, ratelimit.Limit{Requests: rl.WritePerWindow, Window: rl.Window}),
		ratelimit.WithLimit(ratelimit.ClassCollaborator, ratelimit.Limit{Requests: rl.CollaboratorPerWindow, Window: rl.Window}),
	)
}
