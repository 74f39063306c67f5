package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "marketpaline/internal/adapters/http_server"
	"marketpaline/internal/adapters/observability"
	redisad "marketpaline/internal/adapters/redis"
	"marketpaline/internal/app"
	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/session"
	"marketpaline/internal/shared"
	"marketpaline/internal/storage/memory"
	mysqlrepo "marketpaline/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx = log.Logger.WithContext(ctx)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// storage
	var repo domain.ListingRepository
	switch cfg.StorageBackend {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		if err := mysqlrepo.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	default:
		mem := memory.New()
		seed := app.NewSeedService(nil, mem, nil)
		for _, v := range catalog.Names() {
			if _, err := seed.SeedFixtures(ctx, v); err != nil {
				log.Fatal().Err(err).Str("variant", v).Msg("fixture seeding failed")
			}
		}
		repo = mem
	}

	// cache & sessions
	var (
		cache      domain.Cache
		sessions   session.Store
		threadIdle time.Duration
	)
	if cfg.SessionBackend == "redis" {
		rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		cache = redisad.NewCache(rc)
		sessions = redisad.NewSessionStore(rc, cfg.SessionTTL)
		// redis expires sessions on its own; their chat threads follow
		threadIdle = cfg.SessionTTL
	} else {
		cache = memory.NewCache()
		sessions = session.NewMemoryStore()
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	s := app.NewSessionService(sessions, repo, q, cache, app.SessionOptions{
		ReplyDelay: cfg.ReplyDelay,
		ThreadIdle: threadIdle,
	})

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, S: s, ShareBaseURL: cfg.ShareBaseURL})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageBackend).Str("sessions", cfg.SessionBackend).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
