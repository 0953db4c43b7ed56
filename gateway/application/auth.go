package application

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"api-gateway/gateway/domain"
)

// AuthGate valida bearer tokens de forma stateless contra o segredo
// compartilhado do processo. Algoritmo fixo: HS256.
type AuthGate struct {
	secret []byte
}

func NewAuthGate(secret string) *AuthGate {
	return &AuthGate{secret: []byte(secret)}
}

// Authenticate valida o valor do header Authorization e devolve a identidade.
//
// Header ausente falha com AUTHORIZATION_HEADER_MISSING. Token expirado,
// malformado ou com assinatura inválida falham igualmente com
// UNAUTHORISED_REQUEST; a distinção não é exposta ao cliente.
func (g *AuthGate) Authenticate(authorization string) (*domain.Identity, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, domain.E(domain.KindAuthHeaderMissing, "Authorization header is required.")
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, domain.E(domain.KindUnauthorized, "Request is unauthorized.")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, domain.E(domain.KindUnauthorized, "Request is unauthorized.")
	}

	return &domain.Identity{Subject: subject, Token: raw, Claims: claims}, nil
}

// MintToken emite um JWT HS256 com o subject e validade dados.
// Usado pelo stub de accounts e pelos testes.
func MintToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
