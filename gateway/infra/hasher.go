package infra

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Hasher deriva uma chave determinística e de mão única a partir de
// uma identidade sensível. Caro de computar por construção: mesmo com o
// store comprometido, o token cru não sai de graça.
//
// O salt é fixo e configurado por processo, de propósito: o digest precisa
// ser estável entre requisições e entre instâncias do gateway para que a
// chave da janela seja a mesma.
type PBKDF2Hasher struct {
	salt       []byte
	iterations int
}

type HasherOption func(*PBKDF2Hasher)

// WithHashIterations ajusta o custo. Os testes usam valores baixos.
func WithHashIterations(n int) HasherOption {
	return func(h *PBKDF2Hasher) { h.iterations = n }
}

func NewPBKDF2Hasher(salt string, opts ...HasherOption) *PBKDF2Hasher {
	h := &PBKDF2Hasher{
		salt:       []byte(salt),
		iterations: 10000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash implementa domain.Hasher.
func (h *PBKDF2Hasher) Hash(identifier string) string {
	sum := pbkdf2.Key([]byte(identifier), h.salt, h.iterations, 32, sha256.New)
	return hex.EncodeToString(sum)
}
