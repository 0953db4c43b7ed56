package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"api-gateway/gateway/domain"
)

// Accounts é o contrato com o serviço de contas. As rotas do gateway só
// conhecem esta interface.
type Accounts interface {
	AuthUser(ctx context.Context, email, password string) (jwt string, err error)
	UserAlreadyExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, req CreateUser) error
	VerifyUser(ctx context.Context, email, token string) error
	ResendUserToken(ctx context.Context, email, password string) error
	Notifications(ctx context.Context, subject string) ([]Notification, error)
	VerifiedProjects(ctx context.Context, subject string) ([]Project, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSession) (sessionID string, err error)
}

type CreateUser struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type Notification struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Project struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	CreatedDatetimeUTC string `json:"created_datetime_utc"`
}

type CheckoutSession struct {
	Subject    string `json:"subject"`
	Plan       string `json:"plan"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	ProjectID  int64  `json:"project_id"`
}

// errorEnvelope é o corpo de erro padronizado do backend.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// codeToKind traduz códigos do backend para erros de domínio. Código
// desconhecido cai no caminho de erro inesperado (500 no entrypoint).
var codeToKind = map[string]domain.Kind{
	"USER_ALREADY_EXISTS":  domain.KindUserAlreadyExists,
	"USER_NOT_VERIFIED":    domain.KindUserNotVerified,
	"USER_NOT_AUTHORISED":  domain.KindUserNotAuthorised,
	"UNAUTHORISED_REQUEST": domain.KindUnauthorized,
	"VALIDATION_ERROR":     domain.KindValidation,
	"BAD_REQUEST":          domain.KindBadRequest,

	"UNABLE_TO_CREATE_CHECKOUT_SESSION": domain.KindUnableToCreateCheckoutSession,
}

// HTTPAccounts implementa Accounts sobre HTTP/JSON (POST <base>/rpc/<método>).
//
// Cada chamada carrega timeout e passa por um throttle opcional no lado do
// cliente, limitando a pressão do gateway sobre o backend.
type HTTPAccounts struct {
	base     string
	hc       *http.Client
	throttle *rate.Limiter
	log      logrus.FieldLogger
}

type AccountsOption func(*HTTPAccounts)

func WithHTTPClient(hc *http.Client) AccountsOption {
	return func(c *HTTPAccounts) { c.hc = hc }
}

// WithThrottle limita as chamadas de saída a rps com a rajada dada.
func WithThrottle(rps float64, burst int) AccountsOption {
	return func(c *HTTPAccounts) {
		if rps > 0 && burst > 0 {
			c.throttle = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithAccountsLogger(log logrus.FieldLogger) AccountsOption {
	return func(c *HTTPAccounts) { c.log = log }
}

func NewHTTPAccounts(base string, opts ...AccountsOption) *HTTPAccounts {
	c := &HTTPAccounts{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPAccounts) call(ctx context.Context, method string, payload, out any) error {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return fmt.Errorf("accounts throttle: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.WithError(err).WithField("method", method).Error("accounts call failed")
		}
		return fmt.Errorf("call accounts %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read accounts %s response: %w", method, err)
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil {
			if kind, ok := codeToKind[envelope.Error]; ok {
				return domain.E(kind, envelope.Message)
			}
		}
		return fmt.Errorf("accounts %s returned status %d", method, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode accounts %s response: %w", method, err)
	}
	return nil
}

func (c *HTTPAccounts) AuthUser(ctx context.Context, email, password string) (string, error) {
	var out struct {
		JWT string `json:"JWT"`
	}
	err := c.call(ctx, "auth_user", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.JWT, nil
}

func (c *HTTPAccounts) UserAlreadyExists(ctx context.Context, email string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := c.call(ctx, "user_already_exists", map[string]string{"email": email}, &out)
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *HTTPAccounts) CreateUser(ctx context.Context, req CreateUser) error {
	return c.call(ctx, "create_user", req, nil)
}

func (c *HTTPAccounts) VerifyUser(ctx context.Context, email, token string) error {
	return c.call(ctx, "verify_user", map[string]string{
		"email": email,
		"token": token,
	}, nil)
}

func (c *HTTPAccounts) ResendUserToken(ctx context.Context, email, password string) error {
	return c.call(ctx, "resend_user_token", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

func (c *HTTPAccounts) Notifications(ctx context.Context, subject string) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	err := c.call(ctx, "get_user_notifications", map[string]string{"subject": subject}, &out)
	if err != nil {
		return nil, err
	}
	if out.Notifications == nil {
		out.Notifications = []Notification{}
	}
	return out.Notifications, nil
}

func (c *HTTPAccounts) VerifiedProjects(ctx context.Context, subject string) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	err := c.call(ctx, "get_verified_projects", map[string]string{"subject": subject}, &out)
	if err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return out.Projects, nil
}

func (c *HTTPAccounts) CreateCheckoutSession(ctx context.Context, req CheckoutSession) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.call(ctx, "create_stripe_checkout_session", req, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}
