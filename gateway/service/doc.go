// Package service define as funções de rota expostas pelo gateway:
// health-check, introspecção de rate limit e as rotas de usuário que
// encaminham para o backend de accounts.
package service
