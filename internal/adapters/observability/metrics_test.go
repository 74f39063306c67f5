package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketpaline/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveCommand("login", nil)
	observability.ObserveCommand("role", errors.New("bad role"))
	observability.ObserveGate("review", "login_required")
	observability.ObserveQuery("general", "all", 9)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"marketpaline_http_requests_total",
		`marketpaline_session_commands_total{command="role",outcome="error"} 1`,
		`marketpaline_gated_actions_total{action="review",outcome="login_required"} 1`,
		"marketpaline_query_result_size_bucket",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}
