package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "marketpaline/internal/adapters/http_server"
	"marketpaline/internal/app"
	"marketpaline/internal/messaging"
	"marketpaline/internal/session"
	"marketpaline/internal/storage/memory"
)

// nopCache never hits, so every read reaches the repository.
type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any, int) error    { return nil }
func (nopCache) Del(context.Context, string) error              { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := memory.New()
	seed := app.NewSeedService(nil, repo, nopCache{})
	for _, v := range []string{"general", "property"} {
		if _, err := seed.SeedFixtures(context.Background(), v); err != nil {
			t.Fatalf("seed %s: %v", v, err)
		}
	}
	q := app.NewQueryService(repo, nopCache{}, time.Minute)
	s := app.NewSessionService(session.NewMemoryStore(), repo, q, nopCache{}, app.SessionOptions{
		Scheduler: messaging.ImmediateScheduler{},
	})
	srv := httpserver.New([]string{"*"})
	srv.MountHandlers(&httpserver.Handlers{Q: q, S: s, ShareBaseURL: "https://marketpaline.app"})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any, hdr map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func TestBrowseAndETag(t *testing.T) {
	ts := newTestServer(t)

	res, body := do(t, http.MethodGet, ts.URL+"/v1/listings?variant=general&category=for_sale&sort=price_asc", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	items := body["items"].([]any)
	if int(body["count"].(float64)) != len(items) || len(items) == 0 {
		t.Fatalf("unexpected body: %v", body)
	}
	prev := -1.0
	for _, it := range items {
		p := it.(map[string]any)["price"].(float64)
		if p < prev {
			t.Fatalf("items not sorted ascending")
		}
		prev = p
	}

	etag := res.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", etag)
	}
	res, _ = do(t, http.MethodGet, ts.URL+"/v1/listings?variant=general&category=for_sale&sort=price_asc", nil, map[string]string{"If-None-Match": etag})
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}

	_, body = do(t, http.MethodGet, ts.URL+"/v1/listings?variant=general&q=zzzz", nil, nil)
	if body["empty"] != true {
		t.Fatalf("expected empty result: %v", body)
	}
}

func TestListingErrors(t *testing.T) {
	ts := newTestServer(t)

	res, body := do(t, http.MethodGet, ts.URL+"/v1/listings/9999", nil, nil)
	if res.StatusCode != http.StatusNotFound || res.Header.Get("Content-Type") != "application/problem+json" {
		t.Fatalf("expected 404 problem, got %d %v", res.StatusCode, body)
	}
	res, _ = do(t, http.MethodGet, ts.URL+"/v1/listings/abc", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	res, _ = do(t, http.MethodGet, ts.URL+"/v1/listings?variant=boats", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown variant, got %d", res.StatusCode)
	}
	res, _ = do(t, http.MethodGet, ts.URL+"/v1/listings/1/reviews?limit=0", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", res.StatusCode)
	}
}

func TestShareFallback(t *testing.T) {
	ts := newTestServer(t)
	res, body := do(t, http.MethodGet, ts.URL+"/v1/listings/1/share", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	p := body["payload"].(map[string]any)
	if p["url"] != "https://marketpaline.app/listing/1" || body["shared"] != false {
		t.Fatalf("unexpected share: %v", body)
	}
	if !strings.HasSuffix(body["fallback"].(string), "https://marketpaline.app/listing/1") {
		t.Fatalf("unexpected fallback: %v", body["fallback"])
	}
}

func TestSessionFlow_GatedReview(t *testing.T) {
	ts := newTestServer(t)

	res, body := do(t, http.MethodPost, ts.URL+"/v1/sessions", map[string]string{"variant": "general"}, nil)
	if res.StatusCode != http.StatusCreated || body["screen"] != "splash" {
		t.Fatalf("create: %d %v", res.StatusCode, body)
	}
	base := ts.URL + "/v1/sessions/" + body["id"].(string)

	_, body = do(t, http.MethodPost, base+"/select", map[string]any{"listing_id": 1}, nil)
	if body["screen"] != "listing_details" {
		t.Fatalf("select: %v", body)
	}

	res, body = do(t, http.MethodPost, base+"/reviews", map[string]any{"rating": 5, "comment": "Nice"}, nil)
	if res.StatusCode != http.StatusUnauthorized || body["title"] != "Login required" {
		t.Fatalf("expected 401 Login required, got %d %v", res.StatusCode, body)
	}

	do(t, http.MethodPost, base+"/login-prompt", nil, nil)
	do(t, http.MethodPost, base+"/login", nil, nil)
	_, body = do(t, http.MethodPost, base+"/role", map[string]string{"role": "buyer"}, nil)
	if body["screen"] != "listing_details" {
		t.Fatalf("expected return to details: %v", body)
	}

	res, body = do(t, http.MethodPost, base+"/reviews", map[string]any{"rating": 0, "comment": "Nice"}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing rating, got %d %v", res.StatusCode, body)
	}
	res, body = do(t, http.MethodPost, base+"/reviews", map[string]any{"rating": 5, "comment": "Nice"}, nil)
	if res.StatusCode != http.StatusCreated || body["author_name"] != "John Doe" {
		t.Fatalf("expected created review, got %d %v", res.StatusCode, body)
	}

	_, body = do(t, http.MethodGet, base+"/screen", nil, nil)
	l := body["listing"].(map[string]any)
	first := l["reviews"].([]any)[0].(map[string]any)
	if first["comment"] != "Nice" {
		t.Fatalf("new review should be first: %v", first)
	}

	_, body = do(t, http.MethodPost, base+"/back", nil, nil)
	if body["moved"] != true {
		t.Fatalf("back from details should move: %v", body)
	}
}

func TestSessionNotFoundAndBadID(t *testing.T) {
	ts := newTestServer(t)
	res, _ := do(t, http.MethodPost, ts.URL+"/v1/sessions/6f1c2b8e-8c2a-4a55-9a3e-0d1f1c0b7a11/login", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	res, _ = do(t, http.MethodPost, ts.URL+"/v1/sessions/not-a-uuid/login", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestMessagesAndVariant(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, http.MethodPost, ts.URL+"/v1/sessions", map[string]string{"variant": "property"}, nil)
	base := ts.URL + "/v1/sessions/" + body["id"].(string)
	do(t, http.MethodPost, base+"/login", nil, nil)
	do(t, http.MethodPost, base+"/role", map[string]string{"role": "tenant"}, nil)

	res, _ := do(t, http.MethodPost, base+"/messages", map[string]string{"text": "Hello"}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("send: %d", res.StatusCode)
	}
	_, body = do(t, http.MethodGet, base+"/messages", nil, nil)
	items := body["items"].([]any)
	last := items[len(items)-1].(map[string]any)
	if last["text"] != messaging.AutoReply {
		t.Fatalf("expected auto reply, got %v", last)
	}

	_, body = do(t, http.MethodGet, ts.URL+"/v1/variants/property", nil, nil)
	if body["name"] != "property" || len(body["roles"].([]any)) != 3 {
		t.Fatalf("unexpected variant: %v", body)
	}
}
