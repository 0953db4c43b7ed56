package service

import (
	"context"
	"net/http"

	"api-gateway/gateway"
	"api-gateway/gateway/backend"
)

// Projects lista os projetos verificados do usuário autenticado.
func Projects(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		projects, err := accounts.VerifiedProjects(ctx, req.Identity.Subject)
		if err != nil {
			return nil, err
		}
		return gateway.JSON(http.StatusOK, map[string]any{"projects": projects})
	}
}
