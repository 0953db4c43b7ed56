// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - RedisWindowStore: janela deslizante por chave via sorted set + script Lua
//   - MemoryWindowStore: mesma semântica em memória, para testes e dev
//   - PBKDF2Hasher: hash determinístico de identidades sensíveis
//   - RedisMonitorSink: stream append-only de eventos de requisição
//   - NewSlotPool: semáforo simples para limite de concorrência
package infra
