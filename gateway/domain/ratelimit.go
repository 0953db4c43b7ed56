package domain

import "context"

// WindowStore é o armazenamento compartilhado da janela deslizante.
//
// IncrWindow executa, como uma única unidade atômica em relação a qualquer
// outro chamador da mesma chave:
//
//  1. poda os membros com score anterior a nowMs-60000
//  2. conta os membros restantes
//  3. se count < limit, insere um membro com score nowMs
//
// Retorna a contagem ANTES da inserção e se a requisição foi admitida.
// Uma requisição rejeitada nunca consome vaga na janela.
type WindowStore interface {
	IncrWindow(ctx context.Context, key string, nowMs int64, limit int) (count int, allowed bool, err error)

	// CountWindow poda e conta sem inserir (leitura idempotente).
	CountWindow(ctx context.Context, key string, nowMs int64) (int, error)

	// SetRouteLimit persiste o limite por rota (chave rate-limit:<path>),
	// sobrescrevendo qualquer valor anterior. Chamado uma vez no startup.
	SetRouteLimit(ctx context.Context, path string, perMinute int) error

	// RouteLimit lê de volta o limite registrado para a rota.
	RouteLimit(ctx context.Context, path string) (int, error)
}

// Decision é o resultado de uma verificação de rate limit.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// Hasher transforma uma identidade sensível em uma chave de store estável.
// A função deve ser determinística entre instâncias do gateway e de mão
// única: o token cru nunca aparece no store.
type Hasher interface {
	Hash(identifier string) string
}
