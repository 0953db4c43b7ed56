// Package gateway fornece o entrypoint HTTP por rota e o registro de rotas.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (auth, decisão de rate limit, concorrência) sem net/http
//   - infra: implementações concretas (redis, hash, stream de monitoramento)
//   - gateway (este pacote): pipeline HTTP + registro de rotas + tradução para status/headers
//
// Fluxo por requisição:
//
//  1. OPTIONS responde 200 com os headers de CORS e nada mais
//  2. Auth gate valida o bearer token, se a rota exigir
//  3. Rate limiter executa a verificação atômica na janela deslizante
//  4. A função da rota roda com o payload validado
//  5. Erros viram respostas JSON pela taxonomia; CORS e headers de limite
//     entram em toda resposta; um evento de monitoramento é emitido por
//     requisição, sucesso ou falha
//
// Registrar uma rota mutante (GET/POST/PUT/DELETE/HEAD) cria de graça a rota
// OPTIONS correspondente com a mesma política de CORS e sem auth/rate limit,
// então todo preflight de CORS passa sem boilerplate por rota.
package gateway
