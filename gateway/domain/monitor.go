package domain

import (
	"context"
	"time"
)

// Event é o registro append-only emitido uma vez por requisição concluída.
// O gateway só escreve; nunca lê de volta.
type Event struct {
	ID         string
	Name       string
	Method     string
	URL        string
	Duration   float64 // segundos de relógio de parede
	Status     string
	StatusCode int
	RemoteAddr string
	At         time.Time
}

// EventAPIRequest é o nome do evento emitido pelo entrypoint.
const EventAPIRequest = "API_REQUEST"

// Sink é a estratégia de persistência dos eventos de monitoramento.
//
// Implementações podem gravar em Redis stream, memória, etc.
// O entrypoint trata erro como best-effort (não derruba a resposta).
type Sink interface {
	Record(ctx context.Context, ev Event) error
}
