package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/storage/memory"
)

func seeded(t *testing.T) *memory.Repo {
	t.Helper()
	r := memory.New()
	for _, v := range catalog.Names() {
		fx, err := catalog.LoadFixtures(v)
		if err != nil {
			t.Fatal(err)
		}
		if err := r.Seed(context.Background(), fx.Listings); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestRepo_ListByVariantKeepsOrder(t *testing.T) {
	r := seeded(t)
	ls, err := r.ListListings(context.Background(), domain.ListingsQuery{Variant: catalog.Property})
	if err != nil {
		t.Fatal(err)
	}
	if len(ls) == 0 {
		t.Fatalf("no property listings")
	}
	for i := 1; i < len(ls); i++ {
		if ls[i-1].ID > ls[i].ID {
			t.Fatalf("insertion order lost: %d before %d", ls[i-1].ID, ls[i].ID)
		}
		if ls[i].Variant != catalog.Property {
			t.Fatalf("variant leak: %+v", ls[i])
		}
	}
}

func TestRepo_AddReviewPrepends(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	before, _ := r.GetListing(ctx, 1)

	rv, err := r.AddReview(ctx, domain.Review{ID: 1, ListingID: 1, AuthorName: "John Doe", Rating: 5, Comment: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if rv.CreatedAt.IsZero() {
		t.Fatalf("created_at not stamped")
	}
	after, _ := r.GetListing(ctx, 1)
	if len(after.Reviews) != len(before.Reviews)+1 || after.Reviews[0].ID != rv.ID {
		t.Fatalf("review not prepended: %+v", after.Reviews)
	}
	for _, old := range before.Reviews {
		if old.ID >= rv.ID {
			t.Fatalf("assigned id %d collides with existing review %d", rv.ID, old.ID)
		}
	}

	if _, err := r.AddReview(ctx, domain.Review{ListingID: 12345, Rating: 3}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.AddReview(ctx, domain.Review{ListingID: 1, Rating: 9}); !errors.Is(err, domain.ErrInvalidReview) {
		t.Fatalf("expected ErrInvalidReview, got %v", err)
	}
}

func TestRepo_UpsertListingKeepsReviews(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	l, _ := r.GetListing(ctx, 1)
	n := len(l.Reviews)
	l.Title = "Renamed"
	l.Reviews = nil
	if err := r.UpsertListing(ctx, l); err != nil {
		t.Fatal(err)
	}
	got, _ := r.GetListing(ctx, 1)
	if got.Title != "Renamed" || len(got.Reviews) != n {
		t.Fatalf("unexpected listing after upsert: %+v", got)
	}

	l.Status = "Gone"
	if err := r.UpsertListing(ctx, l); !errors.Is(err, domain.ErrInvalidListing) {
		t.Fatalf("invalid listing should be rejected, got %v", err)
	}
}

func TestRepo_ListReviewsLimit(t *testing.T) {
	r := seeded(t)
	page, err := r.ListReviews(context.Background(), 1, domain.PageQuery{Limit: 1})
	if err != nil || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v %v", page, err)
	}
	_ = r.LogMiss(context.Background(), 5, 404, "not found")
	if m := r.Misses(); len(m) != 1 || m[0].Status != 404 {
		t.Fatalf("unexpected misses: %+v", m)
	}
}

func TestRepo_AddReviewAssignsDistinctIDs(t *testing.T) {
	r := seeded(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(listing int64) {
			defer wg.Done()
			rv, err := r.AddReview(ctx, domain.Review{ListingID: listing, Rating: 4, Comment: "same instant", CreatedAt: now})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- rv.ID
		}(int64(i%2) + 1)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate review id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != 100 {
		t.Fatalf("expected 100 ids, got %d", len(seen))
	}
}
