package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pawlink/pawlink-backend/internal/auth"
	"github.com/pawlink/pawlink-backend/internal/config"
	"github.com/pawlink/pawlink-backend/internal/services"
	"github.com/pawlink/pawlink-backend/internal/worker"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{Env: "dev", RateRPS: 1000, PaystackSecret: "sk_test"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm := auth.NewTokenManager("acc", "ref", "pawlink-backend", time.Minute, time.Hour)
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	// handlers that need a store are never reached in these cases
	us := services.NewUserService(nil)
	ls := services.NewLedgerService(nil, nil, nil, wp)
	return NewRouter(cfg, log, tm, us, ls)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/api/v1/webhooks/paystack/verify", "/api/v1/webhooks/paystack"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", path, rec.Code)
		}
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/billing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("billing DELETE: expected 405, got %d", rec.Code)
	}
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/api/v1/billing", "/api/v1/transactions", "/api/v1/users"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouterRejectsRefreshTokenOnProtectedRoute(t *testing.T) {
	r := testRouter(t)
	tm := auth.NewTokenManager("acc", "ref", "pawlink-backend", time.Minute, time.Hour)
	_, refresh, _, err := tm.GeneratePair("user-1", "seeker")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted: got %d", rec.Code)
	}
}

func TestRouterHealth(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
