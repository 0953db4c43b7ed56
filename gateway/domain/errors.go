package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifica a classe de um erro do gateway. O valor é o código
// legível por máquina que vai no corpo da resposta ({"error": <Kind>}).
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindBadRequest        Kind = "BAD_REQUEST"
	KindAuthHeaderMissing Kind = "AUTHORIZATION_HEADER_MISSING"
	KindUnauthorized      Kind = "UNAUTHORISED_REQUEST"
	KindUserNotAuthorised Kind = "USER_NOT_AUTHORISED"
	KindRateLimitExceeded Kind = "RATE_LIMIT_EXCEEDED"
	KindStoreUnavailable  Kind = "STORE_UNAVAILABLE"

	KindUserAlreadyExists Kind = "USER_ALREADY_EXISTS"
	KindUserNotVerified   Kind = "USER_NOT_VERIFIED"

	// esperado por rota mas sem status próprio: cai no 400 genérico
	KindUnableToCreateCheckoutSession Kind = "UNABLE_TO_CREATE_CHECKOUT_SESSION"

	KindUnexpected Kind = "UNEXPECTED_ERROR"
)

// Error é um erro etiquetado que atravessa o pipeline como valor explícito.
// Message é o detalhe "seguro": pode ir para o cliente sem vazar estado interno.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// E cria um erro de domínio com a classe e mensagem dadas.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef cria um erro de domínio formatando a mensagem.
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extrai a classe de um erro qualquer. Erros que não são de domínio
// são tratados como inesperados.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// standardMapped são os erros sempre capturados, independente da rota.
var standardMapped = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindBadRequest:        http.StatusBadRequest,
	KindAuthHeaderMissing: http.StatusBadRequest,
	KindUnauthorized:      http.StatusUnauthorized,
	KindUserNotAuthorised: http.StatusUnauthorized,
	KindRateLimitExceeded: http.StatusTooManyRequests,
	KindStoreUnavailable:  http.StatusServiceUnavailable,
}

// extraMapped só se aplica quando a rota declarou o erro como esperado.
var extraMapped = map[Kind]int{
	KindUserAlreadyExists: http.StatusConflict,
	KindUserNotVerified:   http.StatusTeapot,
}

// MapError resolve (status HTTP, código, mensagem segura) para um erro,
// considerando o conjunto de erros esperados da rota.
//
// Erros esperados sem mapeamento próprio viram 400/BAD_REQUEST. Qualquer
// outro erro (inclusive os não-domínio) vira 500/UNEXPECTED_ERROR com
// mensagem vazia para não expor detalhes internos.
func MapError(err error, expected []Kind) (status int, code Kind, message string) {
	var de *Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, KindUnexpected, ""
	}

	if st, ok := standardMapped[de.Kind]; ok {
		return st, de.Kind, de.Message
	}

	for _, k := range expected {
		if k != de.Kind {
			continue
		}
		if st, ok := extraMapped[de.Kind]; ok {
			return st, de.Kind, de.Message
		}
		return http.StatusBadRequest, KindBadRequest, de.Message
	}

	return http.StatusInternalServerError, KindUnexpected, ""
}
