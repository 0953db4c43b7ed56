// Package domain define contratos e tipos de domínio do gateway: taxonomia de
// erros, registro de rotas, janela deslizante de rate limit e monitoramento.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar as regras do
// pipeline de detalhes de infraestrutura (Redis, JWT, etc).
package domain
