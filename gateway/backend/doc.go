// Package backend fala com os serviços RPC de negócio (accounts). O gateway
// só encaminha payloads validados e traduz o envelope de erro do backend de
// volta para erros de domínio.
package backend
