// utilitário pequeno para formatação rápida/consistente de valores em headers.
// Evita puxar fmt (que é mais "pesado" e genérico) só para formatação simples.

package gateway

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

func formatBool(v bool) string { return strconv.FormatBool(v) }
