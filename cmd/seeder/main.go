package main

import (
	"context"
	"database/sql"
	"flag"
	"strconv"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"marketpaline/internal/adapters/catalogfeed"
	"marketpaline/internal/adapters/observability"
	redisad "marketpaline/internal/adapters/redis"
	"marketpaline/internal/app"
	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/shared"
	mysqlrepo "marketpaline/internal/storage/mysql"
)

func main() {
	var (
		variants = flag.String("variants", strings.Join(catalog.Names(), ","), "comma separated variants to seed")
		ids      = flag.String("ids", "", "comma separated feed listing ids to ingest after the fixtures")
		fixtures = flag.Bool("fixtures", true, "load the embedded fixtures")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx = log.Logger.WithContext(ctx)

	log.Info().
		Str("variants", *variants).
		Str("feed", cfg.FeedBase).
		Str("feed_variant", cfg.Variant).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Msg("seeder starting")

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
	log.Info().Msg("db ping ok, schema current")

	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.SessionBackend == "redis" {
		cache = redisad.NewCache(redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB))
	}

	var feed domain.CatalogFeed
	feedIDs := parseIDs(*ids)
	if len(feedIDs) > 0 {
		client, err := catalogfeed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize catalog feed client")
		}
		feed = client
	}
	seed := app.NewSeedService(feed, repo, cache)

	// one job per variant; each job fans out over the feed ids itself
	names := strings.Split(*variants, ",")
	sem := semaphore.NewWeighted(int64(len(names)))
	var wg sync.WaitGroup
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(variant string) {
			defer wg.Done()
			defer sem.Release(1)

			if *fixtures {
				n, err := seed.SeedFixtures(ctx, variant)
				if err != nil {
					log.Error().Str("variant", variant).Err(err).Msg("fixture seeding failed")
					return
				}
				log.Info().Str("variant", variant).Int("listings", n).Msg("fixtures ok")
			}
			// feed listings belong to the configured variant only
			if len(feedIDs) == 0 || variant != cfg.Variant {
				return
			}
			ok, failed, err := seed.IngestMany(ctx, variant, feedIDs, cfg.Workers, cfg.ReviewCount)
			if err != nil {
				log.Error().Str("variant", variant).Err(err).Msg("ingest aborted")
				return
			}
			log.Info().Str("variant", variant).Int("ok", ok).Int("failed", failed).Msg("ingest done")
		}(name)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

func parseIDs(s string) []int64 {
	var out []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			log.Warn().Str("id", p).Msg("skipping invalid listing id")
			continue
		}
		out = append(out, id)
	}
	return out
}
