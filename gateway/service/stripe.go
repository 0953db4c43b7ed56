package service

import (
	"context"
	"net/http"

	"api-gateway/gateway"
	"api-gateway/gateway/backend"
	"api-gateway/gateway/schemas"
)

// CreateCheckoutSession abre uma sessão de checkout no provedor de pagamento,
// via backend, e devolve o id da sessão.
func CreateCheckoutSession(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		payload, err := schemas.LoadCreateCheckoutSession(body)
		if err != nil {
			return nil, err
		}

		sessionID, err := accounts.CreateCheckoutSession(ctx, backend.CheckoutSession{
			Subject:    req.Identity.Subject,
			Plan:       payload.Plan,
			SuccessURL: payload.SuccessURL,
			CancelURL:  payload.CancelURL,
			ProjectID:  payload.ProjectID,
		})
		if err != nil {
			return nil, err
		}

		return gateway.JSON(http.StatusOK, map[string]string{"session_id": sessionID})
	}
}
