package infra

import (
	"context"
	"sync"

	"api-gateway/gateway/domain"
)

// MemoryMonitorSink é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryMonitorSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewMemoryMonitorSink() *MemoryMonitorSink {
	return &MemoryMonitorSink{}
}

func (s *MemoryMonitorSink) Record(_ context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events devolve uma cópia dos eventos gravados.
func (s *MemoryMonitorSink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}
