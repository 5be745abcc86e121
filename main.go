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

	"github.com/ariebrainware/clinic-care/config"
	"github.com/ariebrainware/clinic-care/endpoint"
	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-care",
		Short: "Clinic care web application",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var memory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep documents in process memory instead of MongoDB")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create MongoDB indexes and the audit log table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			logger := util.InitLogger(cfg.LogLevel, !cfg.IsProduction())
			ctx := context.Background()

			client, err := config.ConnectMongo(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			st := store.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.DBTimeout)
			if err := st.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			logger.Info().Msg("mongodb indexes ready")

			db, err := config.ConnectMySQL()
			if err != nil {
				return err
			}
			if db == nil {
				logger.Info().Msg("DBHOST not set, skipping audit table")
				return nil
			}
			if err := db.AutoMigrate(&model.SecurityLog{}); err != nil {
				return fmt.Errorf("migrate audit table: %w", err)
			}
			logger.Info().Msg("audit table ready")
			return nil
		},
	}
}

func runServer(memory bool) error {
	cfg := config.LoadConfig()
	logger := util.InitLogger(cfg.LogLevel, !cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		return err
	}
	util.SetSessionSecret(cfg.SessionSecret)
	gin.SetMode(cfg.GinMode)

	if err := util.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.Warn().Err(err).Msg("sentry disabled")
	}
	defer util.FlushSentry()

	if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer util.CloseGeoIP()

	auditDB, err := config.ConnectMySQL()
	if err != nil {
		logger.Warn().Err(err).Msg("audit database unavailable, security events are only logged")
	} else if auditDB != nil {
		if err := auditDB.AutoMigrate(&model.SecurityLog{}); err != nil {
			logger.Warn().Err(err).Msg("audit table migration failed")
		} else {
			util.SetSecurityLoggerDB(auditDB)
		}
	}

	st, closeStore, err := openStore(cfg, memory, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := config.ConnectRedis()
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory sessions and rate limits")
	}

	tmpl, err := views.Load()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	router, err := endpoint.SetupRouter(endpoint.RouterOptions{
		Store:          st,
		Sessions:       util.NewSessionStore(rdb),
		Templates:      tmpl,
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      middleware.RateLimitConfig{},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	hits, misses, size := util.GetGeoIPCacheMetrics()
	logger.Info().Int64("geoip_cache_hits", hits).Int64("geoip_cache_misses", misses).
		Int("geoip_cache_size", size).Msg("server stopped")
	return nil
}

func openStore(cfg *config.Config, memory bool, logger zerolog.Logger) (store.Store, func(), error) {
	if memory {
		logger.Warn().Msg("using in-memory document store, data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	client, err := config.ConnectMongo(context.Background())
	if err != nil {
		return nil, nil, err
	}
	st := store.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.DBTimeout)
	if err := st.EnsureIndexes(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("could not ensure mongodb indexes")
	}
	return st, func() { _ = client.Disconnect(context.Background()) }, nil
}
