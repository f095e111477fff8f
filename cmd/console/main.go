package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketplace/admin-console/internal/api"
	"github.com/marketplace/admin-console/internal/api/metrics"
	"github.com/marketplace/admin-console/internal/core/ports"
	"github.com/marketplace/admin-console/internal/core/service"
	"github.com/marketplace/admin-console/internal/infrastructure/apiclient"
	mongodb "github.com/marketplace/admin-console/internal/infrastructure/db/mongo"
	redisdb "github.com/marketplace/admin-console/internal/infrastructure/db/redis"
	"github.com/marketplace/admin-console/internal/infrastructure/queue"
	"github.com/marketplace/admin-console/internal/pkg/config"
	"github.com/marketplace/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var version = "dev"

//	@title			Marketplace Admin Console
//	@version		1.0
//	@description	Session and authorization guard of the marketplace admin console.
//	@BasePath		/

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "console",
		Short: "Marketplace admin console",
		Long:  `Serves the marketplace admin console: session lifecycle, route guard and merchant store gate.`,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the console version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//nolint:funlen
func serve(ctx context.Context, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger.Init(logger.Options{
		Level:        cfg.LogLevel,
		Pretty:       cfg.IsDevelopment(),
		Installation: cfg.Credentials.InstallationID,
	})
	log := logger.Component("main")

	// --- Credential store ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	var sealer *redisdb.Sealer
	if cfg.Credentials.SealingKey != "" {
		if sealer, err = redisdb.NewSealer(cfg.Credentials.SealingKey); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("CREDENTIAL_SEALING_KEY not set: credentials are stored unsealed")
	}
	creds := redisdb.NewCredentialStore(rdb, cfg.Credentials.Prefix, cfg.Credentials.InstallationID, sealer)

	// --- Session audit trail (optional) ---
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	defer stopAudit()

	var auditor ports.SessionAuditor
	var dispatcher *queue.Dispatcher
	mongoDB, closeMongo, err := connectAudit(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeMongo()
	if mongoDB != nil {
		repo := mongodb.NewSessionEventRepository(mongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		dispatcher = queue.NewDispatcher(cfg.Mongo.AuditWorkers, repo, logger.Component("audit"))
		dispatcher.Start(auditCtx)
		auditor = dispatcher
	}

	// --- Session guard ---
	client := apiclient.New(apiclient.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		RetryMax: cfg.API.RetryMax,
	})
	sessions := service.NewSessionService(apiclient.NewAuthClient(client), creds, logger.Component("session"), service.SessionOptions{
		RestoreTimeout: cfg.Session.RestoreTimeout,
		RefreshSkew:    cfg.Session.RefreshSkew,
		Auditor:        auditor,
	})
	defer sessions.Subscribe(metrics.ObserveSession)()

	gate := service.NewStoreGate(apiclient.NewStoreClient(client), logger.Component("store_gate"))
	defer gate.Watch(sessions)()

	go func() {
		if err := sessions.RestoreSession(ctx); err != nil {
			log.Info().Err(err).Msg("no session restored")
		}
	}()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Gate:     gate,
		Redis:    rdb,
		Mongo:    mongoDB,
		Log:      logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("console started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopAudit()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}

// connectAudit opens the audit database when MONGO_URI is set. The returned
// close func is always safe to call.
func connectAudit(ctx context.Context, cfg *config.Config) (*mongo.Database, func(), error) {
	noop := func() {}
	if cfg.Mongo.URI == "" {
		return nil, noop, nil
	}
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, noop, err
	}
	return db, func() {
		if err := mongodb.Disconnect(client, shutdownTimeout); err != nil {
			l := logger.Get()
			l.Warn().Err(err).Msg("audit database")
		}
	}, nil
}
