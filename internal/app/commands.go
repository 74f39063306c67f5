package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
)

// SeedService fills the listing repository from the embedded fixtures or
// from an upstream catalog feed.
type SeedService struct {
	feed  domain.CatalogFeed
	repo  domain.ListingRepository
	cache domain.Cache
	now   func() time.Time
}

// NewSeedService accepts a nil feed and a nil cache; fixtures need neither.
func NewSeedService(f domain.CatalogFeed, r domain.ListingRepository, cache domain.Cache) *SeedService {
	return &SeedService{feed: f, repo: r, cache: cache, now: time.Now}
}

// SeedFixtures upserts every fixture listing of a variant with its reviews
// and reports how many listings were written.
func (s *SeedService) SeedFixtures(ctx context.Context, variant string) (int, error) {
	fx, err := catalog.LoadFixtures(variant)
	if err != nil {
		return 0, err
	}
	for _, l := range fx.Listings {
		if err := s.repo.UpsertListing(ctx, l); err != nil {
			return 0, fmt.Errorf("seed listing %d: %w", l.ID, err)
		}
		if len(l.Reviews) > 0 {
			if err := s.repo.UpsertReviews(ctx, l.Reviews); err != nil {
				return 0, fmt.Errorf("seed reviews of %d: %w", l.ID, err)
			}
		}
		invalidateListing(ctx, s.cache, l.ID, l.Variant)
	}
	log.Ctx(ctx).Info().Str("variant", variant).Int("listings", len(fx.Listings)).Msg("fixtures seeded")
	return len(fx.Listings), nil
}

// IngestListing pulls one listing and its reviews from the feed. Listings
// the feed does not know or refuses to serve are recorded as misses and
// are not errors.
func (s *SeedService) IngestListing(ctx context.Context, variant string, id int64, reviewCount int) error {
	if s.feed == nil {
		return errors.New("ingest: no catalog feed configured")
	}
	v, err := catalog.Lookup(variant)
	if err != nil {
		return err
	}

	p, err := s.feed.GetListing(ctx, id)
	if err != nil {
		if status, reason, ok := missOf(err, ""); ok {
			_ = s.repo.LogMiss(ctx, id, status, reason)
			invalidateListing(ctx, s.cache, id, v.Name)
			return nil
		}
		return err
	}

	l, err := mapListing(v.Name, p)
	if err != nil {
		_ = s.repo.LogMiss(ctx, id, 422, "invalid payload")
		return err
	}
	if !v.HasCategory(l.Category) {
		_ = s.repo.LogMiss(ctx, id, 422, "category "+string(l.Category))
		return fmt.Errorf("%w: category %q not offered by %s", domain.ErrInvalidListing, l.Category, v.Name)
	}
	// parent first, reviews reference it
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return err
	}
	invalidateListing(ctx, s.cache, l.ID, v.Name)

	// reviews are best effort for misses; other failures surface
	raw, rerr := s.feed.GetReviews(ctx, l.ID, reviewCount)
	if rerr != nil {
		if status, reason, ok := missOf(rerr, "reviews"); ok {
			_ = s.repo.LogMiss(ctx, l.ID, status, reason)
			invalidateReviews(ctx, s.cache, l.ID)
			return nil
		}
		return rerr
	}
	rs, dropped := mapReviews(l.ID, raw, s.now())
	if dropped > 0 {
		log.Ctx(ctx).Warn().Int64("listing", l.ID).Int("dropped", dropped).Msg("feed reviews rejected")
	}
	if len(rs) > 0 {
		if err := s.repo.UpsertReviews(ctx, rs); err != nil {
			return fmt.Errorf("upsert reviews failed for %d: %w", l.ID, err)
		}
	}
	invalidateReviews(ctx, s.cache, l.ID)
	return nil
}

// IngestMany runs IngestListing over ids with at most workers in flight.
// Individual failures are logged; only context cancellation stops the run.
func (s *SeedService) IngestMany(ctx context.Context, variant string, ids []int64, workers, reviewCount int) (ok, failed int, err error) {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	results := make([]error, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.IngestListing(gctx, variant, id, reviewCount)
			if results[i] != nil {
				log.Ctx(gctx).Warn().Int64("id", id).Err(results[i]).Msg("ingest failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	for _, e := range results {
		if e == nil {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed, nil
}

// missOf classifies feed errors that end an ingest gracefully.
func missOf(err error, scope string) (int, string, bool) {
	prefix := ""
	if scope != "" {
		prefix = scope + ":"
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404, prefix + "not found", true
	case errors.Is(err, domain.ErrFeedDenied):
		return 403, prefix + "inactive", true
	}
	return 0, "", false
}

func invalidateListing(ctx context.Context, c domain.Cache, id int64, variant string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, listingKey(id))
	if variant != "" {
		_ = c.Del(ctx, variantListingsKey(variant))
	}
	invalidateReviews(ctx, c, id)
}

// invalidateReviews moves the listing to a new review generation; pages of
// the old one are never read again and age out with their TTL.
func invalidateReviews(ctx context.Context, c domain.Cache, id int64) {
	if c == nil {
		return
	}
	if err := c.Set(ctx, reviewsGenKey(id), uuid.NewString(), 0); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("listing", id).Msg("review cache generation not bumped")
	}
}
