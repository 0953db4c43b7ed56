// Package schemas valida os payloads das rotas de usuário. Campo ausente ou
// JSON inválido viram um erro de domínio VALIDATION_ERROR; o pipeline nunca
// entrega payload sujo para a função da rota.
package schemas
