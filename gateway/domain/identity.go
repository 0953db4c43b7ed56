package domain

// Identity é o principal resolvido pelo auth gate e anexado à requisição.
type Identity struct {
	// Subject é o identificador do usuário extraído das claims.
	Subject string
	// Token é o bearer token cru. Nunca vira chave de store sem hash.
	Token string
	// Claims é o conjunto de claims decodificado, para uso das rotas.
	Claims map[string]any
}
