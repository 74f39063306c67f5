//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	mysqlrepo "marketpaline/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=marketpaline"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/marketpaline?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := mysqlrepo.Migrate(db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	return db
}

func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	fx, err := catalog.LoadFixtures(catalog.General)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range fx.Listings {
		if err := repo.UpsertListing(ctx, l); err != nil {
			t.Fatalf("UpsertListing %d: %v", l.ID, err)
		}
		if err := repo.UpsertReviews(ctx, l.Reviews); err != nil {
			t.Fatalf("UpsertReviews %d: %v", l.ID, err)
		}
	}

	ls, err := repo.ListListings(ctx, domain.ListingsQuery{Variant: catalog.General})
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if len(ls) != len(fx.Listings) {
		t.Fatalf("expected %d listings, got %d", len(fx.Listings), len(ls))
	}

	got, err := repo.GetListing(ctx, fx.Listings[0].ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Title != fx.Listings[0].Title || len(got.Images) != len(fx.Listings[0].Images) {
		t.Fatalf("unexpected listing: %+v", got)
	}

	// host and container clocks may disagree; stamp explicitly
	rv, err := repo.AddReview(ctx, domain.Review{
		ListingID: got.ID, AuthorName: "John Doe", Rating: 5, Comment: "Lovely",
		Timestamp: "Just now", CreatedAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	page, err := repo.ListReviews(ctx, got.ID, domain.PageQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(page.Items) == 0 || page.Items[0].ID != rv.ID {
		t.Fatalf("newest review should be first: %+v", page.Items)
	}

	// back-to-back reviews on two listings, same timestamp: each keeps its own row
	other := fx.Listings[1].ID
	stamp := time.Now().Add(2 * time.Hour)
	a, err := repo.AddReview(ctx, domain.Review{ListingID: got.ID, AuthorName: "A", Rating: 4, Comment: "first", CreatedAt: stamp})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	b, err := repo.AddReview(ctx, domain.Review{ListingID: other, AuthorName: "B", Rating: 3, Comment: "second", CreatedAt: stamp})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if a.ID == b.ID || a.ID == rv.ID {
		t.Fatalf("review ids not distinct: %d %d %d", rv.ID, a.ID, b.ID)
	}
	pa, _ := repo.ListReviews(ctx, got.ID, domain.PageQuery{Limit: 1})
	pb, _ := repo.ListReviews(ctx, other, domain.PageQuery{Limit: 1})
	if len(pa.Items) != 1 || pa.Items[0].Comment != "first" || len(pb.Items) != 1 || pb.Items[0].Comment != "second" {
		t.Fatalf("reviews crossed listings: %+v %+v", pa.Items, pb.Items)
	}

	if _, err := repo.GetListing(ctx, 424242); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.LogMiss(ctx, 424242, 404, "not found"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
}
