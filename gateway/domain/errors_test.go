package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestMapError_StandardKinds(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindAuthHeaderMissing, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindUserNotAuthorised, http.StatusUnauthorized},
		{KindRateLimitExceeded, http.StatusTooManyRequests},
		{KindStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, c := range cases {
		status, code, message := MapError(E(c.kind, "detail"), nil)
		if status != c.status {
			t.Fatalf("%s: expected status %d, got %d", c.kind, c.status, status)
		}
		if code != c.kind {
			t.Fatalf("%s: expected code %s, got %s", c.kind, c.kind, code)
		}
		if message != "detail" {
			t.Fatalf("%s: expected message to pass through, got %q", c.kind, message)
		}
	}
}

func TestMapError_ExpectedKinds(t *testing.T) {
	expected := []Kind{KindUserAlreadyExists, KindUserNotVerified}

	status, code, _ := MapError(E(KindUserAlreadyExists, ""), expected)
	if status != http.StatusConflict || code != KindUserAlreadyExists {
		t.Fatalf("expected 409 USER_ALREADY_EXISTS, got %d %s", status, code)
	}

	status, code, _ = MapError(E(KindUserNotVerified, ""), expected)
	if status != http.StatusTeapot || code != KindUserNotVerified {
		t.Fatalf("expected 418 USER_NOT_VERIFIED, got %d %s", status, code)
	}
}

func TestMapError_ExpectedKindWithoutOwnMapping(t *testing.T) {
	// esperado mas sem status próprio: vira 400 BAD_REQUEST com a mensagem
	status, code, message := MapError(
		E(KindUnableToCreateCheckoutSession, "oops"),
		[]Kind{KindUnableToCreateCheckoutSession},
	)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if code != KindBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %s", code)
	}
	if message != "oops" {
		t.Fatalf("expected message %q, got %q", "oops", message)
	}
}

func TestMapError_UndeclaredKindIsUnexpected(t *testing.T) {
	// USER_ALREADY_EXISTS fora da lista de esperados não vaza nada
	status, code, message := MapError(E(KindUserAlreadyExists, "secret detail"), nil)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if code != KindUnexpected {
		t.Fatalf("expected UNEXPECTED_ERROR, got %s", code)
	}
	if message != "" {
		t.Fatalf("expected empty message, got %q", message)
	}
}

func TestMapError_NonDomainError(t *testing.T) {
	status, code, message := MapError(errors.New("boom"), []Kind{KindUserAlreadyExists})
	if status != http.StatusInternalServerError || code != KindUnexpected || message != "" {
		t.Fatalf("expected 500 UNEXPECTED_ERROR with empty message, got %d %s %q", status, code, message)
	}
}

func TestMapError_WrappedDomainError(t *testing.T) {
	wrapped := &wrapError{cause: E(KindUnauthorized, "nope")}
	status, code, _ := MapError(wrapped, nil)
	if status != http.StatusUnauthorized || code != KindUnauthorized {
		t.Fatalf("expected 401 UNAUTHORISED_REQUEST, got %d %s", status, code)
	}
}

type wrapError struct {
	cause error
}

func (w *wrapError) Error() string { return "wrapped: " + w.cause.Error() }
func (w *wrapError) Unwrap() error { return w.cause }

func TestKindOf(t *testing.T) {
	if got := KindOf(E(KindValidation, "x")); got != KindValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", got)
	}
	if got := KindOf(errors.New("x")); got != KindUnexpected {
		t.Fatalf("expected UNEXPECTED_ERROR, got %s", got)
	}
}

func TestError_Error(t *testing.T) {
	if got := E(KindValidation, "").Error(); got != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := Ef(KindValidation, "field %s", "email").Error(); got != "VALIDATION_ERROR: field email" {
		t.Fatalf("unexpected error string %q", got)
	}
}
