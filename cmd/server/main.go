package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	apihttp "pulse/internal/http"
	"pulse/internal/identity"
	identitymetrics "pulse/internal/identity/metrics"
	identityservice "pulse/internal/identity/service"
	identitystore "pulse/internal/identity/store"
	"pulse/internal/messaging"
	messagingmetrics "pulse/internal/messaging/metrics"
	messagingservice "pulse/internal/messaging/service"
	conversationstore "pulse/internal/messaging/store/conversation"
	groupstore "pulse/internal/messaging/store/group"
	messagestore "pulse/internal/messaging/store/message"
	"pulse/internal/platform/config"
	"pulse/internal/platform/httpserver"
	"pulse/internal/platform/logger"
	"pulse/internal/platform/metrics"
	"pulse/internal/platform/postgres"
	"pulse/internal/sentiment"
	"pulse/pkg/requestcontext"
)

// main wires configuration, stores, services, and the two HTTP servers (API
// and metrics), then blocks until shutdown. Business logic lives in the
// internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users         identityservice.UserStore
		messages      messagingservice.MessageStore
		conversations messagingservice.ConversationStore
		groups        messagingservice.GroupStore
		storeTx       messagingservice.StoreTx
		db            *sql.DB
	)
	if cfg.InMemory() {
		log.Info("using in-memory stores")
		users = identitystore.NewInMemory()
		messages = messagestore.NewInMemory()
		conversations = conversationstore.NewInMemory()
		groups = groupstore.NewInMemory()
		storeTx = messagingservice.NewMemoryTx()
	} else {
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("connected to postgres")
		users = identitystore.NewPostgres(db)
		messages = messagestore.NewPostgres(db)
		conversations = conversationstore.NewPostgres(db)
		groups = groupstore.NewPostgres(db)
		storeTx = postgres.NewTxRunner(db)
	}

	analyzer, err := sentiment.Default()
	if err != nil {
		log.Error("failed to build sentiment lexicon", "error", err)
		os.Exit(1)
	}

	identitySvc := identity.NewService(users, identitymetrics.New())
	messagingSvc := messaging.NewService(
		messages, conversations, groups,
		identitySvc, analyzer, storeTx,
		messagingmetrics.New(),
	)

	if cfg.SeedDemo {
		seedCtx := requestcontext.WithTime(ctx, time.Now().UTC())
		n, err := identitySvc.SeedDemoUsers(seedCtx)
		if err != nil {
			log.Error("failed to seed demo users", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			log.Info("seeded demo users", "count", n)
		}
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:         log,
		Identity:       identity.NewHandler(identitySvc, log),
		Messaging:      messaging.NewHandler(messagingSvc, log),
		Users:          identitySvc,
		HTTPMetrics:    metrics.NewHTTP(),
		RequestTimeout: cfg.ReqTimeout,
	})

	apiSrv := httpserver.New(cfg.Addr, router)
	metricsSrv := httpserver.New(cfg.MetricsAddr, promhttp.Handler())

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server listening", "addr", cfg.Addr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := apiSrv.Shutdown(shutdownCtx)
		if mErr := metricsSrv.Shutdown(shutdownCtx); err == nil {
			err = mErr
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
