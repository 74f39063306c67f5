package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketpaline/internal/adapters/observability"
	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/query"
)

type QueryService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ListingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func listingKey(id int64) string         { return fmt.Sprintf("listing:%d", id) }
func variantListingsKey(v string) string { return "listings:" + v }

// Review pages are keyed by a per-listing generation so a single write makes
// every cached page of that listing unreachable, whatever its limit or sort.
func reviewsGenKey(id int64) string { return fmt.Sprintf("reviews:%d:gen", id) }
func reviewsKey(id int64, gen string, limit int, sort string) string {
	return fmt.Sprintf("reviews:%d:%s:%d:%s", id, gen, limit, sort)
}

func reviewsGen(ctx context.Context, c domain.Cache, id int64) string {
	var gen string
	if ok, _ := c.Get(ctx, reviewsGenKey(id), &gen); !ok {
		return ""
	}
	return gen
}

func (s *QueryService) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	key := listingKey(id)
	var l domain.Listing
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

func (s *QueryService) ListReviews(ctx context.Context, id int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	key := reviewsKey(id, reviewsGen(ctx, s.cache, id), pg.Limit, pg.Sort)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, id, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// callers must not be able to mutate what sits in the cache
	copyRS := deepCopyReviewsPage(rs)

	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

// Listings returns every listing of a variant in catalog order.
func (s *QueryService) Listings(ctx context.Context, variant string) ([]domain.Listing, error) {
	v, err := catalog.Lookup(variant)
	if err != nil {
		return nil, err
	}
	key := variantListingsKey(v.Name)
	var out []domain.Listing
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err = s.repo.ListListings(ctx, domain.ListingsQuery{Variant: v.Name})
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

type BrowseRequest struct {
	Variant string
	Bucket  string
	Search  string
	Sort    string
}

type BrowseResult struct {
	Bucket catalog.Bucket   `json:"bucket"`
	Sort   query.SortOption `json:"sort"`
	Items  []domain.Listing `json:"items"`
	Count  int              `json:"count"`
	Empty  bool             `json:"empty"`
}

// Browse runs the listing pipeline over a variant's catalog. Unknown bucket
// ids fall back to "all" and unknown sorts to "recent".
func (s *QueryService) Browse(ctx context.Context, req BrowseRequest) (BrowseResult, error) {
	v, err := catalog.Lookup(req.Variant)
	if err != nil {
		return BrowseResult{}, err
	}
	src, err := s.Listings(ctx, v.Name)
	if err != nil {
		return BrowseResult{}, err
	}
	b, _ := v.Bucket(req.Bucket)
	q := query.Query{Bucket: b, Search: req.Search, Sort: query.ParseSort(req.Sort)}
	res := query.Apply(src, q)
	observability.ObserveQuery(v.Name, b.ID, res.Count)
	return BrowseResult{Bucket: b, Sort: q.Sort, Items: res.Items, Count: res.Count, Empty: res.Empty()}, nil
}

func (s *QueryService) Variant(name string) (catalog.Variant, error) { return catalog.Lookup(name) }

// Notifications are static per variant.
func (s *QueryService) Notifications(variant string) ([]domain.Notification, error) {
	fx, err := catalog.LoadFixtures(variant)
	if err != nil {
		return nil, err
	}
	if fx.Notifications == nil {
		return []domain.Notification{}, nil
	}
	return fx.Notifications, nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Review, n)
		copy(out.Items, in.Items)
	}
	return out
}
