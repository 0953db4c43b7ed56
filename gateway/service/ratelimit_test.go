package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"api-gateway/gateway"
	"api-gateway/gateway/application"
	"api-gateway/gateway/domain"
	"api-gateway/gateway/infra"
)

func newReportLimiter(t *testing.T) *application.RateLimiter {
	t.Helper()
	store := infra.NewMemoryWindowStore()
	hasher := infra.NewPBKDF2Hasher("salt", infra.WithHashIterations(10))
	return application.NewRateLimiter(store, hasher)
}

func TestRateLimitReport(t *testing.T) {
	limiter := newReportLimiter(t)
	ctx := context.Background()

	if err := limiter.Register(ctx, "/v1/user", 3); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := limiter.Register(ctx, "/v1/private", 5); err != nil {
		t.Fatalf("register: %v", err)
	}

	// consome uma vaga pública e uma privada
	if _, err := limiter.Check(ctx, domain.ScopePublic, "10.0.0.1", "/v1/user"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, err := limiter.Check(ctx, domain.ScopePrivate, "raw-token", "/v1/private"); err != nil {
		t.Fatalf("check: %v", err)
	}

	tracked := func() []domain.Registration {
		return []domain.Registration{
			{Method: "POST", Path: "/v1/user", RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 3}},
			{Method: "GET", Path: "/v1/private", AuthRequired: true, RateLimit: &domain.RateLimit{Scope: domain.ScopePrivate, PerMinute: 5}},
		}
	}

	req := &gateway.Request{
		Identity:   &domain.Identity{Subject: "a@b.com", Token: "raw-token"},
		RemoteAddr: "10.0.0.1",
	}

	resp, err := RateLimitReport(limiter, tracked)(ctx, req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	var report map[string]endpointQuota
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got := report["/v1/user"]; got.Limit != 3 || got.Remaining != 2 {
		t.Fatalf("unexpected quota for /v1/user: %+v", got)
	}
	if got := report["/v1/private"]; got.Limit != 5 || got.Remaining != 4 {
		t.Fatalf("unexpected quota for /v1/private: %+v", got)
	}
}

func TestRateLimitReport_SkipsPrivateRoutesWithoutIdentity(t *testing.T) {
	limiter := newReportLimiter(t)
	ctx := context.Background()
	if err := limiter.Register(ctx, "/v1/private", 5); err != nil {
		t.Fatalf("register: %v", err)
	}

	tracked := func() []domain.Registration {
		return []domain.Registration{
			{Method: "GET", Path: "/v1/private", AuthRequired: true, RateLimit: &domain.RateLimit{Scope: domain.ScopePrivate, PerMinute: 5}},
		}
	}

	resp, err := RateLimitReport(limiter, tracked)(ctx, &gateway.Request{RemoteAddr: "10.0.0.1"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var report map[string]endpointQuota
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
