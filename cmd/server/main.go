package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/api"
	"github.com/jbeaudin/maplewood/internal/app"
	iauth "github.com/jbeaudin/maplewood/internal/auth"
	"github.com/jbeaudin/maplewood/internal/cache"
	"github.com/jbeaudin/maplewood/internal/database"
	"github.com/jbeaudin/maplewood/internal/drafts"
	"github.com/jbeaudin/maplewood/internal/middleware"
	"github.com/jbeaudin/maplewood/internal/services"
	"github.com/jbeaudin/maplewood/pkg/logger"
	"github.com/jbeaudin/maplewood/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("maplewood-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := database.Open(cfg.Database.DatabaseConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(db, log)

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.Cache.Redis.Enabled {
		redisStore, redisErr := cache.NewRedisStore(cfg.Cache.RedisStoreConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to in-memory cache", zap.Error(redisErr))
		} else {
			cacheStore = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			defer func() { _ = redisStore.Close() }()
		}
	}

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	confirmations, err := services.NewConfirmationService(db, mailer,
		services.WithRelaySchedule(cfg.Rsvp.RelaySchedule))
	if err != nil {
		return fmt.Errorf("initialise confirmation service: %w", err)
	}
	if err := confirmations.Start(); err != nil {
		return fmt.Errorf("start confirmation relay: %w", err)
	}
	defer func() {
		<-confirmations.Stop().Done()
	}()

	submissionCfg, err := cfg.Rsvp.SubmissionConfig()
	if err != nil {
		return err
	}

	svcs, err := buildServices(db, confirmations, submissionCfg)
	if err != nil {
		return err
	}

	draftStore, err := drafts.NewStore(cacheStore, drafts.WithTTL(cfg.Rsvp.DraftTTL))
	if err != nil {
		return fmt.Errorf("initialise draft store: %w", err)
	}

	rateStore := middleware.NewCacheRateStore(cacheStore)

	router, err := api.NewRouter(db, jwtService, cfg, svcs, draftStore, rateStore)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func buildServices(db *gorm.DB, confirmations *services.ConfirmationService, submissionCfg services.SubmissionConfig) (api.Services, error) {
	var svcs api.Services
	var err error

	if svcs.Lookup, err = services.NewLookupService(db); err != nil {
		return svcs, fmt.Errorf("initialise lookup service: %w", err)
	}
	if svcs.Submission, err = services.NewSubmissionService(db, confirmations, submissionCfg); err != nil {
		return svcs, fmt.Errorf("initialise submission service: %w", err)
	}
	if svcs.Parties, err = services.NewPartyService(db); err != nil {
		return svcs, fmt.Errorf("initialise party service: %w", err)
	}
	if svcs.Guests, err = services.NewGuestService(db); err != nil {
		return svcs, fmt.Errorf("initialise guest service: %w", err)
	}
	if svcs.Events, err = services.NewEventService(db); err != nil {
		return svcs, fmt.Errorf("initialise event service: %w", err)
	}
	if svcs.Invitations, err = services.NewInvitationService(db); err != nil {
		return svcs, fmt.Errorf("initialise invitation service: %w", err)
	}
	if svcs.Reports, err = services.NewReportService(db); err != nil {
		return svcs, fmt.Errorf("initialise report service: %w", err)
	}

	return svcs, nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("fetch database handle for close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database", zap.Error(err))
	}
}
