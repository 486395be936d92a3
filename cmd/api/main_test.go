package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/dental-voice-api/internal/config"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

func testConfig() *appconfig.Config {
	cfg := appconfig.Load()
	cfg.AdminJWTSecret = "test-secret"
	cfg.ClinicTimezone = "UTC"
	return cfg
}

func TestNewServerServesHealthAndMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	mock.ExpectPing()

	handler, dispatcher := newServer(testConfig(), mock, mock, prometheus.NewRegistry(), logging.NewWithWriter("error", &strings.Builder{}))
	if dispatcher == nil {
		t.Fatalf("expected dispatcher")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewServerProtectsAdminRoutes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	handler, _ := newServer(testConfig(), mock, mock, prometheus.NewRegistry(), logging.NewWithWriter("error", &strings.Builder{}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Fatalf("expected WWW-Authenticate Bearer, got %q", got)
	}
}
