package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Scope define sobre qual identidade o rate limit é aplicado.
//
//   - private: identidade autenticada (token), hasheada antes de virar chave
//   - public: endereço de rede do cliente, usado em claro
type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

// RateLimit é a política de limite por rota: no máximo PerMinute requisições
// por identidade na janela móvel de 60 segundos.
type RateLimit struct {
	Scope     Scope
	PerMinute int
}

// CORS é a política de CORS da rota.
type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowCredentials bool
}

// Registration é a declaração estática de uma rota: método + caminho +
// política de auth/rate-limit/CORS + erros de domínio esperados.
// Imutável depois do startup.
type Registration struct {
	Method       string
	Path         string
	AuthRequired bool
	RateLimit    *RateLimit
	CORS         CORS
	Expected     []Kind
}

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Validate verifica as invariantes da declaração.
func (r Registration) Validate() error {
	if !allowedMethods[r.Method] {
		return fmt.Errorf("invalid method %q for route %q", r.Method, r.Path)
	}
	if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("invalid route path %q", r.Path)
	}
	if r.RateLimit != nil {
		if r.RateLimit.PerMinute <= 0 {
			return fmt.Errorf("route %q: rate limit must be > 0", r.Path)
		}
		switch r.RateLimit.Scope {
		case ScopePublic:
		case ScopePrivate:
			if !r.AuthRequired {
				return errors.New("if a private rate limit is defined then auth_required must be true")
			}
		default:
			return fmt.Errorf("route %q: unknown rate limit scope %q", r.Path, r.RateLimit.Scope)
		}
	}
	return nil
}

// Mutating diz se a rota ganha uma rota OPTIONS registrada automaticamente.
func (r Registration) Mutating() bool {
	switch r.Method {
	case "GET", "POST", "DELETE", "PUT", "HEAD":
		return true
	}
	return false
}

// CORSMethodAllowed diz se o método da rota está coberto pela política de CORS.
func (r Registration) CORSMethodAllowed() bool {
	for _, m := range r.CORS.AllowedMethods {
		if m == "*" || m == r.Method {
			return true
		}
	}
	return false
}
