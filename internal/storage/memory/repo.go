// Package memory is the in-process listing repository used when no database
// is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"marketpaline/internal/domain"
)

type Miss struct {
	ID     int64
	Status int
	Reason string
}

type Repo struct {
	mu       sync.RWMutex
	order    []int64
	listings map[int64]domain.Listing
	misses   []Miss
	now      func() time.Time
	// highest review id seen; AddReview hands out the next one
	lastReview int64
}

func New() *Repo {
	return &Repo{listings: map[int64]domain.Listing{}, now: time.Now}
}

// Seed loads listings in order, keeping their embedded reviews.
func (r *Repo) Seed(ctx context.Context, ls []domain.Listing) error {
	for _, l := range ls {
		if err := r.UpsertListing(ctx, l); err != nil {
			return err
		}
		if err := r.UpsertReviews(ctx, l.Reviews); err != nil {
			return err
		}
	}
	return nil
}

// UpsertListing stores the listing fields; existing reviews are kept.
func (r *Repo) UpsertListing(_ context.Context, l domain.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.listings[l.ID]
	next := l.Clone()
	next.Reviews = nil
	if ok {
		next.Reviews = cur.Reviews
	} else {
		r.order = append(r.order, l.ID)
	}
	r.listings[l.ID] = next
	return nil
}

func (r *Repo) UpsertReviews(_ context.Context, rs []domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range rs {
		if err := rv.Validate(); err != nil {
			return err
		}
		l, ok := r.listings[rv.ListingID]
		if !ok {
			return domain.ErrNotFound
		}
		if rv.ID > r.lastReview {
			r.lastReview = rv.ID
		}
		replaced := false
		for i := range l.Reviews {
			if l.Reviews[i].ID == rv.ID {
				l.Reviews[i] = rv
				replaced = true
				break
			}
		}
		if !replaced {
			l.Reviews = append(l.Reviews, rv)
		}
		r.listings[rv.ListingID] = l
	}
	return nil
}

// AddReview assigns the next review id and prepends: the newest review is
// always first. Any id on rv is ignored.
func (r *Repo) AddReview(_ context.Context, rv domain.Review) (domain.Review, error) {
	if err := rv.Validate(); err != nil {
		return domain.Review{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[rv.ListingID]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = r.now().UTC()
	}
	r.lastReview++
	rv.ID = r.lastReview
	l.Reviews = append([]domain.Review{rv}, l.Reviews...)
	r.listings[rv.ListingID] = l
	return rv, nil
}

func (r *Repo) LogMiss(_ context.Context, id int64, status int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, Miss{ID: id, Status: status, Reason: reason})
	return nil
}

func (r *Repo) Misses() []Miss {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Miss(nil), r.misses...)
}

func (r *Repo) GetListing(_ context.Context, id int64) (domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l.Clone(), nil
}

func (r *Repo) ListListings(_ context.Context, q domain.ListingsQuery) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Listing{}
	for _, id := range r.order {
		l := r.listings[id]
		if q.Variant != "" && l.Variant != q.Variant {
			continue
		}
		if q.SellerID != nil && l.SellerID != *q.SellerID {
			continue
		}
		out = append(out, l.Clone())
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *Repo) ListReviews(_ context.Context, id int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return domain.ReviewsPage{}, domain.ErrNotFound
	}
	items := l.Reviews
	if pg.Limit > 0 && len(items) > pg.Limit {
		items = items[:pg.Limit]
	}
	return domain.ReviewsPage{Items: append([]domain.Review{}, items...)}, nil
}
