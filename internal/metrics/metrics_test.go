package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInit_ExposesBuildInfo(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "1.2.3", Revision: "abc"}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "app_build_info") {
		t.Fatal("app_build_info not exposed")
	}
	if !strings.Contains(body, `version="1.2.3"`) {
		t.Fatalf("version label missing:\n%s", body)
	}
}

func TestInit_EmptyVersionDefaultsToDev(t *testing.T) {
	p := Init(Config{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `version="dev"`) {
		t.Fatal("empty version must default to dev")
	}
}

func TestRegister_CustomCollector(t *testing.T) {
	p := Init(Config{})

	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canvas_test_events_total",
		Help: "test counter",
	})
	p.Register(c)
	c.Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "canvas_test_events_total 1") {
		t.Fatal("registered collector not scraped")
	}
}
