package service

import (
	"context"
	"net/http"

	"api-gateway/gateway"
	"api-gateway/gateway/backend"
	"api-gateway/gateway/domain"
	"api-gateway/gateway/schemas"
)

// AuthUser autentica o usuário no backend e devolve o JWT emitido.
func AuthUser(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		payload, err := schemas.LoadAuthUser(body)
		if err != nil {
			return nil, err
		}

		jwt, err := accounts.AuthUser(ctx, payload.Email, payload.Password)
		if err != nil {
			return nil, err
		}

		return gateway.JSON(http.StatusOK, map[string]string{"JWT": jwt})
	}
}

// CheckUserExists responde 200 vazio quando o e-mail está livre e falha com
// USER_ALREADY_EXISTS quando não está. HEAD não carrega corpo; o status e o
// código de erro dizem tudo.
func CheckUserExists(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		exists, err := accounts.UserAlreadyExists(ctx, req.PathValue("email"))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.E(domain.KindUserAlreadyExists, "")
		}
		return gateway.Empty(http.StatusOK), nil
	}
}

// CreateUser cria um usuário novo via backend.
func CreateUser(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		payload, err := schemas.LoadCreateUser(body)
		if err != nil {
			return nil, err
		}

		err = accounts.CreateUser(ctx, backend.CreateUser{
			Email:       payload.Email,
			Password:    payload.Password,
			DisplayName: payload.DisplayName,
		})
		if err != nil {
			return nil, err
		}

		return gateway.Empty(http.StatusOK), nil
	}
}

// VerifyUserToken confirma o token de verificação enviado por e-mail.
func VerifyUserToken(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		payload, err := schemas.LoadVerifyUserToken(body)
		if err != nil {
			return nil, err
		}

		if err := accounts.VerifyUser(ctx, payload.Email, payload.Token); err != nil {
			return nil, err
		}
		return gateway.Empty(http.StatusOK), nil
	}
}

// ResendUserTokenEmail reenvia o e-mail com o token de verificação.
func ResendUserTokenEmail(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		body, err := req.Body()
		if err != nil {
			return nil, err
		}
		payload, err := schemas.LoadResendUserTokenEmail(body)
		if err != nil {
			return nil, err
		}

		if err := accounts.ResendUserToken(ctx, payload.Email, payload.Password); err != nil {
			return nil, err
		}
		return gateway.Empty(http.StatusOK), nil
	}
}

// UserNotifications lista as notificações do usuário autenticado.
func UserNotifications(accounts backend.Accounts) gateway.RouteFunc {
	return func(ctx context.Context, req *gateway.Request) (*gateway.Response, error) {
		notifications, err := accounts.Notifications(ctx, req.Identity.Subject)
		if err != nil {
			return nil, err
		}
		return gateway.JSON(http.StatusOK, map[string]any{"notifications": notifications})
	}
}
