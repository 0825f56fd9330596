package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/servana/eventrelay/internal/config"
	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/infra/messaging"
	"github.com/servana/eventrelay/internal/infra/persistence"
	"github.com/servana/eventrelay/internal/lock"
	"github.com/servana/eventrelay/internal/outbox"
	"github.com/servana/eventrelay/internal/subscriber"
	"github.com/servana/eventrelay/internal/transport/http/handlers"
	"github.com/servana/eventrelay/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
)

// RunProcessor wires the store, bus and subscribers, then drives the outbox
// tick loop until ctx is canceled. The operator API is served on its own
// listener so multiple processor instances can run behind one producer API.
func RunProcessor(ctx context.Context, cfg config.Config) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := persistence.New(ctx, persistence.Config{
		WriteDSN:          cfg.Database.WriteDSN,
		ReadDSN:           cfg.Database.ReadDSN,
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	natsClient, err := messaging.NewNATS(ctx, cfg.NATS)
	if err != nil {
		return err
	}
	if natsClient == nil {
		return errors.New("nats: url is required")
	}
	defer natsClient.Close()

	outboxRepo := persistence.NewOutboxRepository(conn, cfg.Outbox.MaxRetries)
	ledger := outbox.NewLedger(persistence.NewLedgerRepository(conn))
	auditRepo := persistence.NewAuditLogRepository(conn)

	bus := outbox.NewBus()
	relay := subscriber.NewRelay(natsClient)
	audit := subscriber.NewAuditRecorder(ledger, auditRepo)
	for _, eventType := range event.Types() {
		bus.Subscribe(eventType, relay.Handle)
		bus.Subscribe(eventType, audit.Handle)
	}

	processor := outbox.NewProcessor(outboxRepo, bus, log, outbox.Config{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		LockTimeout:  cfg.Outbox.LockTimeout,
		BaseBackoff:  cfg.Outbox.BaseBackoff,
		Jitter:       cfg.Outbox.Jitter,
	})

	srv := operatorServer(cfg, log, processor)
	go func() {
		log.Infof("bootstrap: operator API listening on %s", cfg.Outbox.OperatorAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("operator server error")
		}
	}()

	go reportStats(ctx, cfg, log, conn, processor)

	processor.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("operator server shutdown error")
	}
	return nil
}

func operatorServer(cfg config.Config, log *logrus.Logger, processor *outbox.Processor) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery())
	handlers.NewOutboxHandler(processor).RegisterRoutes(router)

	return &http.Server{
		Addr:         cfg.Outbox.OperatorAddress,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// reportStats periodically logs queue depths. The advisory lock keeps the
// report single-flight across processor instances sharing one database.
func reportStats(ctx context.Context, cfg config.Config, log *logrus.Logger, conn *persistence.DB, processor *outbox.Processor) {
	interval := cfg.Outbox.StatsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	locker := persistence.NewAdvisoryLocker(conn)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		_, err := lock.WithLock(ctx, locker, lock.StatsReporterLockID, func(ctx context.Context) error {
			stats, err := processor.Stats(ctx)
			if err != nil {
				return err
			}
			fields := logrus.Fields{}
			for status, count := range stats {
				fields[string(status)] = count
			}
			log.WithFields(fields).Info("outbox: queue stats")
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("outbox: stats report failed")
		}
	}
}
