package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/api"
	"github.com/baharkarakas/rentacar-backend/internal/auth"
	"github.com/baharkarakas/rentacar-backend/internal/cache"
	"github.com/baharkarakas/rentacar-backend/internal/config"
	"github.com/baharkarakas/rentacar-backend/internal/db"
	"github.com/baharkarakas/rentacar-backend/internal/events"
	"github.com/baharkarakas/rentacar-backend/internal/logger"
	"github.com/baharkarakas/rentacar-backend/internal/metrics"
	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/baharkarakas/rentacar-backend/internal/repository/memory"
	"github.com/baharkarakas/rentacar-backend/internal/repository/postgres"
	"github.com/baharkarakas/rentacar-backend/internal/services"
	"github.com/baharkarakas/rentacar-backend/internal/storage"
	"github.com/baharkarakas/rentacar-backend/internal/tracing"
	"github.com/baharkarakas/rentacar-backend/internal/worker"
)

const serviceName = "rentacar-api"

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := tracing.Init(serviceName, cfg.OTLPEndpoint, log)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}()
	metrics.Init()

	// ---------- persistence ----------
	var repos repository.Repositories
	switch cfg.DBDriver {
	case "memory":
		log.Warn("using in-memory repositories, data is lost on restart")
		repos = memory.NewRepositories(memory.NewStore())
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool, log); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos = postgres.NewRepositories(pool)
	}

	// ---------- blob storage ----------
	var blobs services.Storage
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory image storage")
		blobs = storage.NewMemory("")
	default:
		m, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		}, log)
		if err != nil {
			log.Error("minio", "err", err)
			os.Exit(1)
		}
		blobs = m
	}

	// optional: cache + events
	var listingCache services.ListingCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewListings(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			log.Warn("redis unavailable, listing cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer c.Close()
			listingCache = c
		}
	}
	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, log)
		if err != nil {
			log.Warn("nats unavailable, events disabled", "url", cfg.NATSURL, "err", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	wp := worker.NewPool(cfg.Workers, log)

	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	userSvc := services.NewUserService(services.UserDeps{
		Users:         repos.Users,
		Audit:         repos.AuditLogs,
		Tokens:        tokens,
		Storage:       blobs,
		Log:           log,
		UploadTimeout: cfg.UploadTimeout,
		DevTokens:     cfg.IsDev(),
	})
	listingSvc := services.NewListingService(services.ListingDeps{
		Listings:      repos.Listings,
		Users:         repos.Users,
		Audit:         repos.AuditLogs,
		Storage:       blobs,
		Cache:         listingCache,
		Events:        publisher,
		Async:         wp,
		Log:           log,
		UploadTimeout: cfg.UploadTimeout,
	})
	bookingSvc := services.NewBookingService(services.BookingDeps{
		Bookings: repos.Bookings,
		Listings: repos.Listings,
		Users:    repos.Users,
		Audit:    repos.AuditLogs,
		Events:   publisher,
		Async:    wp,
		Log:      log,
	})

	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		Log:        log,
		UserSvc:    userSvc,
		ListingSvc: listingSvc,
		BookingSvc: bookingSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "db", cfg.DBDriver, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	// bekleyen audit/event işleri bitsin
	wp.Stop()
}
