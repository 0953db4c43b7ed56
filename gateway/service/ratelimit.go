package service

import (
	"context"
	"net/http"

	"api-gateway/gateway"
	"api-gateway/gateway/application"
	"api-gateway/gateway/domain"
)

type endpointQuota struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// RateLimitReport devolve, por rota rastreada, {limit, remaining} consultando
// a janela sem incrementar. Rotas de escopo private usam a identidade
// autenticada do chamador; rotas públicas usam o endereço de rede.
func RateLimitReport(limiter *application.RateLimiter, tracked func() []domain.Registration) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		result := make(map[string]endpointQuota)

		for _, reg := range tracked() {
			identifier := req.RemoteAddr
			if reg.RateLimit.Scope == domain.ScopePrivate {
				if req.Identity == nil {
					continue
				}
				identifier = req.Identity.Token
			}

			decision, err := limiter.Query(ctx, reg.RateLimit.Scope, identifier, reg.Path)
			if err != nil {
				return nil, err
			}
			result[reg.Path] = endpointQuota{Limit: decision.Limit, Remaining: decision.Remaining}
		}

		return gateway.JSON(http.StatusOK, result)
	}
}
