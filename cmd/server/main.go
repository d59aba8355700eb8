// Command server runs the tradegate HTTP service. main wires dependencies
// from config and owns process lifecycle; business logic lives in the
// internal services.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accounthandler "tradegate/internal/account/handler"
	accountservice "tradegate/internal/account/service"
	accountstore "tradegate/internal/account/store"
	documenthandler "tradegate/internal/document/handler"
	docservice "tradegate/internal/document/service"
	docstore "tradegate/internal/document/store"
	"tradegate/internal/jwtauth"
	"tradegate/internal/mailer"
	"tradegate/internal/platform/config"
	"tradegate/internal/platform/httpserver"
	"tradegate/internal/platform/logger"
	"tradegate/internal/platform/metrics"
	"tradegate/internal/platform/postgres"
	platformredis "tradegate/internal/platform/redis"
	httptransport "tradegate/internal/transport/http"
	verificationhandler "tradegate/internal/verification/handler"
	verificationservice "tradegate/internal/verification/service"
	tokenstore "tradegate/internal/verification/store"
	"tradegate/pkg/platform/audit"
	kafkapublisher "tradegate/pkg/platform/audit/publisher"
	auditmemory "tradegate/pkg/platform/audit/store/memory"
	auditpostgres "tradegate/pkg/platform/audit/store/postgres"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Hour
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Persistence: Postgres when a DSN is configured, in-memory otherwise.
	var (
		accounts   accountstore.Store
		documents  docservice.Store
		docsFull   verificationservice.DocumentStore
		tokens     verificationservice.TokenStore
		auditStore audit.Store
		userTx     docservice.UserTx
	)
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			return
		}
		defer db.Close()

		pool, err := postgres.OpenPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("pgx pool unavailable", "error", err)
			return
		}
		defer pool.Close()

		accounts = accountstore.NewPostgres(db)
		documentStore := docstore.NewPostgres(db)
		documents, docsFull = documentStore, documentStore
		tokens = tokenstore.NewPostgres(pool)
		auditStore = auditpostgres.New(db)
		userTx = docservice.NewPostgresTx(db)
	} else {
		accounts = accountstore.NewMemory()
		documentStore := docstore.NewMemory()
		documents, docsFull = documentStore, documentStore
		tokens = tokenstore.NewMemory()
		auditStore = auditmemory.New()
		userTx = docservice.NewShardedTx()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	// Redis, when configured, takes over token storage for multi-instance
	// deployments.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
		tokens = tokenstore.NewRedis(redisClient.Client)
	}

	// Audit trail, optionally fanned out to Kafka.
	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := kafkapublisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			return
		}
		defer kafka.Close()
		publisher = kafka
	}
	trail := audit.NewTrail(auditStore, publisher, log)

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTP(cfg.SMTP)
	} else {
		mail = mailer.NewLog(log)
		log.Warn("no SMTP host configured, verification emails go to the log")
	}

	jwtService := jwtauth.New(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTTTL)
	verification := verificationservice.New(
		tokens, accounts, docsFull, userTx,
		mailer.NewComposer(cfg.VerifyBaseURL, cfg.SMTP.SenderName),
		mail, trail, m, log,
	)
	accountSvc := accountservice.New(accounts, verification, jwtService, trail, m, log)
	documentSvc := docservice.New(documents, accounts, userTx, trail, m, log)

	router := httptransport.NewRouter(httptransport.Handlers{
		Accounts:     accounthandler.New(accountSvc, log),
		Documents:    documenthandler.New(documentSvc, accountSvc, log),
		Verification: verificationhandler.New(verification, log),
	}, jwtauth.NewAdapter(jwtService), m, log)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting tradegate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return trail.Run(groupCtx)
	})
	group.Go(func() error {
		// Expired tokens stay invalid without this sweep; it only reclaims
		// storage.
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if deleted, err := verification.SweepExpired(groupCtx); err != nil {
					log.Warn("token sweep failed", "error", err)
				} else if deleted > 0 {
					log.Info("swept expired verification tokens", "deleted", deleted)
				}
			}
		}
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		return
	}
	log.Info("shutdown complete")
}
