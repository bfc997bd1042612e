package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emuangala/formulario/internal/middleware"
	"github.com/emuangala/formulario/internal/model"
)

type stubSessionFinder struct {
	session *model.Session
}

func (s *stubSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s.session != nil && s.session.ID == id {
		return s.session, nil
	}
	return nil, nil
}

func testRouter(t *testing.T, finder middleware.SessionFinder, formService FormularioServiceInterface) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		AuthService:       &mockAuthService{},
		AuthConfig:        testAuthConfig(),
		FormularioService: formService,
		UploadMaxSize:     testUploadMaxSize,
		HealthCheck:       func() error { return nil },
	})
}

// TestRouter_HealthEndpoint verifica o endpoint de saúde.
func TestRouter_HealthEndpoint(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

// TestRouter_HealthEndpointUnhealthy verifica o 503 com base de dados inacessível.
func TestRouter_HealthEndpointUnhealthy(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		SessionFinder:     &stubSessionFinder{},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		AuthService:       &mockAuthService{},
		AuthConfig:        testAuthConfig(),
		FormularioService: &mockFormularioService{},
		UploadMaxSize:     testUploadMaxSize,
		HealthCheck:       func() error { return errors.New("connection refused") },
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// TestRouter_ProtectedRouteWithoutSession verifica o 401 das rotas protegidas.
func TestRouter_ProtectedRouteWithoutSession(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/formularios", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestRouter_ProtectedRouteWithSession verifica o acesso com sessão válida.
func TestRouter_ProtectedRouteWithSession(t *testing.T) {
	finder := &stubSessionFinder{
		session: &model.Session{
			ID:        "sess-1",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	service := &mockFormularioService{
		listFn: func(_ context.Context, userID string) ([]*model.Formulario, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return nil, nil
		},
	}
	router := testRouter(t, finder, service)

	req := httptest.NewRequest(http.MethodGet, "/api/formularios", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

// TestRouter_MutationWithoutCSRFToken verifica o bloqueio CSRF nas mutações.
func TestRouter_MutationWithoutCSRFToken(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// TestRouter_CSRFTokenEndpoint verifica o endpoint de obtenção do token CSRF.
func TestRouter_CSRFTokenEndpoint(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["token"] == "" {
		t.Error("expected non-empty csrf token")
	}
}

// TestRouter_SecurityHeaders verifica os cabeçalhos de segurança.
func TestRouter_SecurityHeaders(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

// TestRouter_CORSPreflight verifica o preflight nas rotas da API.
func TestRouter_CORSPreflight(t *testing.T) {
	router := testRouter(t, &stubSessionFinder{}, &mockFormularioService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/formularios", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want configured origin", got)
	}
}
