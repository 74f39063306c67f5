//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "marketpaline/internal/adapters/http_server"
	redisad "marketpaline/internal/adapters/redis"
	"marketpaline/internal/app"
	"marketpaline/internal/messaging"
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
	return db
}

func post(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()
	b, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func get(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func TestHTTP_EndToEnd_ReviewOnMySQLWithRedisSessions(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)

	repo := mysqlrepo.New(db)
	cache := redisad.NewCache(rc)
	ctx := context.Background()
	if _, err := app.NewSeedService(nil, repo, cache).SeedFixtures(ctx, "general"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	q := app.NewQueryService(repo, cache, time.Minute)
	s := app.NewSessionService(redisad.NewSessionStore(rc, time.Hour), repo, q, cache, app.SessionOptions{
		Scheduler: messaging.ImmediateScheduler{},
	})
	srv := httpserver.New([]string{"*"})
	srv.MountHandlers(&httpserver.Handlers{Q: q, S: s})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// warm the listing cache so the review must invalidate it
	if code, _ := get(t, ts.URL+"/v1/listings/4"); code != http.StatusOK {
		t.Fatalf("GET listing: %d", code)
	}

	code, body := post(t, ts.URL+"/v1/sessions", map[string]string{"variant": "general"})
	if code != http.StatusCreated {
		t.Fatalf("create session: %d %v", code, body)
	}
	base := ts.URL + "/v1/sessions/" + body["id"].(string)
	post(t, base+"/select", map[string]any{"listing_id": 4})
	post(t, base+"/login", nil)
	post(t, base+"/role", map[string]string{"role": "buyer"})

	code, body = post(t, base+"/reviews", map[string]any{"rating": 4, "comment": "Lovely lakeside venue"})
	if code != http.StatusCreated {
		t.Fatalf("review: %d %v", code, body)
	}

	_, body = get(t, ts.URL+"/v1/listings/4")
	first := body["reviews"].([]any)[0].(map[string]any)
	if first["comment"] != "Lovely lakeside venue" {
		t.Fatalf("expected fresh review first, got %v", first)
	}

	_, body = get(t, base)
	if body["authenticated"] != true || body["screen"] != "home" {
		t.Fatalf("unexpected stored session: %v", body)
	}
}
