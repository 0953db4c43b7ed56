// Package application contém os casos de uso do gateway: autenticação por
// token, verificação/consulta de rate limit e aquisição de vagas de
// concorrência.
//
// Ele depende apenas do pacote domain (e da lib de JWT) e não conhece
// net/http além da leitura do header Authorization.
package application
