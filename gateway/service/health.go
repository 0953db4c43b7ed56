package service

import (
	"context"
	"net/http"
	"time"

	"api-gateway/gateway"
	"api-gateway/gateway/domain"
)

// LivenessStore grava o marcador de vida lido por quem monitora o gateway.
type LivenessStore interface {
	SetLiveness(ctx context.Context, at time.Time) error
}

// HealthCheck devolve 200 "OK" e grava o marcador no store compartilhado.
func HealthCheck(store LivenessStore, now func() time.Time) gateway.RouteFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, _ *gateway.Request) (*gateway.Response, error) {
		if store != nil {
			if err := store.SetLiveness(ctx, now()); err != nil {
				return nil, domain.E(domain.KindStoreUnavailable, "Service temporarily unavailable.")
			}
		}
		return gateway.Text(http.StatusOK, "OK"), nil
	}
}
