package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"api-gateway/gateway/application"
)

// Stub de accounts para desenvolvimento local: guarda usuários em memória e
// fala o mesmo protocolo /rpc/* que o gateway consome. Não use em produção.

type user struct {
	Password    string
	DisplayName string
	Verified    bool
	Token       string
}

type stub struct {
	mu     sync.Mutex
	users  map[string]*user
	secret string
}

type rpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, rpcError{Error: code, Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload")
		return false
	}
	return true
}

func (s *stub) authUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &payload) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[payload.Email]
	s.mu.Unlock()

	if !ok || u.Password != payload.Password {
		writeError(w, http.StatusUnauthorized, "UNAUTHORISED_REQUEST", "Invalid credentials.")
		return
	}
	if !u.Verified {
		writeError(w, http.StatusTeapot, "USER_NOT_VERIFIED", "User is not verified.")
		return
	}

	jwt, err := application.MintToken(s.secret, payload.Email, time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UNEXPECTED_ERROR", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"JWT": jwt})
}

func (s *stub) userAlreadyExists(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &payload) {
		return
	}

	s.mu.Lock()
	_, ok := s.users[payload.Email]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"exists": ok})
}

func (s *stub) createUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if !decode(w, r, &payload) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[payload.Email]; ok {
		writeError(w, http.StatusConflict, "USER_ALREADY_EXISTS", "User already exists.")
		return
	}
	s.users[payload.Email] = &user{
		Password:    payload.Password,
		DisplayName: payload.DisplayName,
		Token:       "stub-token",
	}
	log.Printf("created user %s (verification token: stub-token)", payload.Email)
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *stub) verifyUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if !decode(w, r, &payload) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[payload.Email]
	if !ok || u.Token != payload.Token {
		writeError(w, http.StatusUnauthorized, "USER_NOT_AUTHORISED", "Invalid verification token.")
		return
	}
	u.Verified = true
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *stub) resendUserToken(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &payload) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[payload.Email]
	s.mu.Unlock()

	if !ok || u.Password != payload.Password {
		writeError(w, http.StatusUnauthorized, "USER_NOT_AUTHORISED", "Invalid credentials.")
		return
	}
	log.Printf("resent verification token for %s", payload.Email)
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *stub) verifiedProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": []map[string]any{
			{"id": 1, "name": "demo", "created_datetime_utc": "2024-01-01T00:00:00Z"},
		},
	})
}

func (s *stub) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Plan string `json:"plan"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.Plan == "" {
		writeError(w, http.StatusBadRequest, "UNABLE_TO_CREATE_CHECKOUT_SESSION", "Unknown plan.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": "cs_stub_1"})
}

func (s *stub) notifications(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &payload) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": []map[string]string{
			{"id": "1", "message": "Welcome, " + payload.Email},
		},
	})
}

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	s := &stub{users: make(map[string]*user), secret: secret}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /rpc/auth_user", s.authUser)
	mux.HandleFunc("POST /rpc/user_already_exists", s.userAlreadyExists)
	mux.HandleFunc("POST /rpc/create_user", s.createUser)
	mux.HandleFunc("POST /rpc/verify_user", s.verifyUser)
	mux.HandleFunc("POST /rpc/resend_user_token", s.resendUserToken)
	mux.HandleFunc("POST /rpc/get_user_notifications", s.notifications)
	mux.HandleFunc("POST /rpc/get_verified_projects", s.verifiedProjects)
	mux.HandleFunc("POST /rpc/create_stripe_checkout_session", s.createCheckoutSession)

	addr := ":8090"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("accounts stub listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
