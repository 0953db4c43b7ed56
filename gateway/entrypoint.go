package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"api-gateway/gateway/application"
	"api-gateway/gateway/domain"
)

// Request é o contexto explícito entregue à função da rota.
type Request struct {
	HTTP *http.Request
	// Identity é a identidade resolvida pelo auth gate; nil quando a rota
	// não exige autenticação.
	Identity *domain.Identity
	// RemoteAddr é o endereço do cliente já normalizado (host, sem porta).
	RemoteAddr string
}

// PathValue devolve o valor de um segmento nomeado do caminho.
func (r *Request) PathValue(name string) string {
	return r.HTTP.PathValue(name)
}

// maxBodyBytes limita o corpo aceito pelas rotas. Os payloads do gateway são
// pequenos; qualquer coisa acima disso é abuso ou engano.
const maxBodyBytes = 1 << 20

// Body lê o corpo da requisição, limitado a maxBodyBytes.
func (r *Request) Body() ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.HTTP.Body, maxBodyBytes+1))
	if err != nil {
		return nil, domain.E(domain.KindBadRequest, "unable to read request body")
	}
	if len(data) > maxBodyBytes {
		return nil, domain.E(domain.KindBadRequest, "request body too large")
	}
	return data, nil
}

// Response é a resposta produzida por uma função de rota.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON monta uma resposta application/json.
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{Status: status, ContentType: "application/json", Body: body}, nil
}

// Text monta uma resposta text/plain.
func Text(status int, s string) *Response {
	return &Response{Status: status, ContentType: "text/plain; charset=utf-8", Body: []byte(s)}
}

// Empty monta uma resposta sem corpo com mimetype JSON, como as rotas de
// usuário que só confirmam.
func Empty(status int) *Response {
	return &Response{Status: status, ContentType: "application/json"}
}

// RouteFunc é a função de negócio de uma rota. Erros devolvidos atravessam a
// taxonomia; nada propaga cru para o transporte.
type RouteFunc func(ctx context.Context, req *Request) (*Response, error)

// Entrypoint compõe o pipeline por rota: OPTIONS -> auth -> rate limit ->
// função da rota -> mapeamento de erro -> CORS/headers -> monitoramento.
// Cada estágio depende só do contexto explícito, em sequência fixa.
type Entrypoint struct {
	reg      domain.Registration
	fn       RouteFunc
	auth     *application.AuthGate
	limiter  *application.RateLimiter
	monitor  domain.Sink
	log      logrus.FieldLogger
	trustXFF bool
	now      func() time.Time
}

// rateHeaders acumula o que vai em X-Rate-Limit / X-Rate-Limit-Left.
// Presentes sempre que a rota declara limite, sucesso ou 429.
type rateHeaders struct {
	set   bool
	limit int
	left  int
}

func (e *Entrypoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := e.now()

	resp, rl := e.process(r)

	e.addCORS(w, r)
	if rl.set {
		w.Header().Set("X-Rate-Limit", formatInt(rl.limit))
		w.Header().Set("X-Rate-Limit-Left", formatInt(rl.left))
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}

	e.emit(r, resp.Status, e.now().Sub(start))
}

func (e *Entrypoint) process(r *http.Request) (*Response, rateHeaders) {
	var rl rateHeaders

	// preflight: só CORS, nenhuma outra checagem
	if r.Method == http.MethodOptions {
		return Empty(http.StatusOK), rl
	}

	// os headers de rate limit acompanham qualquer resposta da rota limitada,
	// inclusive falhas de auth que encerram o pipeline antes da checagem
	if lim := e.reg.RateLimit; lim != nil {
		rl.set, rl.limit = true, lim.PerMinute
	}

	req := &Request{HTTP: r, RemoteAddr: clientAddr(r, e.trustXFF)}

	if e.reg.AuthRequired {
		identity, err := e.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			return e.errorResponse(err), rl
		}
		req.Identity = identity
	}

	if lim := e.reg.RateLimit; lim != nil {
		identifier := req.RemoteAddr
		if lim.Scope == domain.ScopePrivate {
			identifier = req.Identity.Token
		}

		decision, err := e.limiter.Check(r.Context(), lim.Scope, identifier, e.reg.Path)
		rl.left = decision.Remaining
		if err != nil {
			return e.errorResponse(err), rl
		}
	}

	resp, err := e.fn(r.Context(), req)
	if err != nil {
		return e.errorResponse(err), rl
	}
	if resp == nil {
		resp = Empty(http.StatusOK)
	}
	return resp, rl
}

// errorResponse converte qualquer erro do pipeline em JSON estruturado.
// Erros 5xx são logados com a causa real; o cliente só vê a mensagem segura.
func (e *Entrypoint) errorResponse(err error) *Response {
	status, code, message := domain.MapError(err, e.reg.Expected)

	if status >= http.StatusInternalServerError && e.log != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"method": e.reg.Method,
			"path":   e.reg.Path,
		}).Error("route error")
	}

	body, _ := json.Marshal(map[string]string{
		"error":   string(code),
		"message": message,
	})
	return &Response{Status: status, ContentType: "application/json", Body: body}
}

func (e *Entrypoint) addCORS(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
	h.Set("Access-Control-Allow-Credentials", formatBool(e.reg.CORS.AllowCredentials))
	h.Set("Access-Control-Allow-Methods", strings.Join(e.reg.CORS.AllowedMethods, ","))
	h.Set("Access-Control-Allow-Origin", strings.Join(e.reg.CORS.AllowedOrigins, ","))
}

// emit grava exatamente um evento por requisição, depois da resposta pronta.
// Best-effort: falha de monitoramento não muda o que o cliente recebeu.
func (e *Entrypoint) emit(r *http.Request, status int, d time.Duration) {
	if e.monitor == nil {
		return
	}

	ev := domain.Event{
		ID:         uuid.NewString(),
		Name:       domain.EventAPIRequest,
		Method:     r.Method,
		URL:        e.reg.Path,
		Duration:   d.Seconds(),
		Status:     formatInt(status) + " " + http.StatusText(status),
		StatusCode: status,
		RemoteAddr: clientAddr(r, e.trustXFF),
		At:         e.now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.monitor.Record(ctx, ev); err != nil && e.log != nil {
		e.log.WithError(err).Warn("monitor record failed")
	}
}

// clientAddr extrai o endereço do cliente.
func clientAddr(r *http.Request, trustXFF bool) string {
	if trustXFF {
		// pega o primeiro IP do X-Forwarded-For (cliente original)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
	}

	// fallback: RemoteAddr
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
