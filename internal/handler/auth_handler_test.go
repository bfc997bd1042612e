package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emuangala/formulario/internal/model"
)

type mockAuthService struct {
	signUpFn         func(ctx context.Context, email, senha string) (*model.Session, error)
	signInFn         func(ctx context.Context, email, senha string) (*model.Session, error)
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func (m *mockAuthService) SignUp(ctx context.Context, email, senha string) (*model.Session, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, senha)
	}
	return nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, senha string) (*model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, senha)
	}
	return nil, nil
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:3000",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

func testSession() *model.Session {
	return &model.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// TestSignUp_SetsSessionCookie verifica o registo com cookie de sessão.
func TestSignUp_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		signUpFn: func(_ context.Context, email, senha string) (*model.Session, error) {
			if email != "novo@example.com" {
				t.Errorf("email = %q, want %q", email, "novo@example.com")
			}
			return testSession(), nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"novo@example.com","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/registrar", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "sess-1" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "sess-1")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
}

// TestSignUp_EmailInUseReturns409 verifica o conflito de email duplicado.
func TestSignUp_EmailInUseReturns409(t *testing.T) {
	service := &mockAuthService{
		signUpFn: func(context.Context, string, string) (*model.Session, error) {
			return nil, model.NewEmailInUseError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"usado@example.com","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/registrar", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeEmailInUse {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeEmailInUse)
	}
}

// TestSignUp_InvalidBodyReturns400 verifica o 400 para JSON malformado.
func TestSignUp_InvalidBodyReturns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/registrar", strings.NewReader("{nope"))
	w := httptest.NewRecorder()

	h.SignUp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestSignIn_WrongPasswordReturns401 verifica o 401 de credenciais inválidas.
func TestSignIn_WrongPasswordReturns401(t *testing.T) {
	service := &mockAuthService{
		signInFn: func(context.Context, string, string) (*model.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"maria@example.com","senha":"errada"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/entrar", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SignIn(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if sessionCookieFrom(t, w) != nil {
		t.Error("session cookie must not be set on failure")
	}
}

// TestSignIn_Success verifica a entrada com credenciais corretas.
func TestSignIn_Success(t *testing.T) {
	service := &mockAuthService{
		signInFn: func(context.Context, string, string) (*model.Session, error) {
			return testSession(), nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	body := `{"email":"maria@example.com","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/entrar", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.SignIn(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["user_id"] != "user-1" {
		t.Errorf("user_id = %q, want %q", resp["user_id"], "user-1")
	}
}

// TestLogin_RedirectsWithStateCookie verifica o arranque do fluxo OAuth.
func TestLogin_RedirectsWithStateCookie(t *testing.T) {
	var receivedState string
	service := &mockAuthService{
		getLoginURLFn: func(state string) string {
			receivedState = state
			return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if stateCookie.Value != receivedState {
		t.Errorf("state cookie = %q, want %q", stateCookie.Value, receivedState)
	}
	if !strings.Contains(w.Header().Get("Location"), receivedState) {
		t.Error("redirect URL should contain the state")
	}
}

// TestCallback_StateMismatchReturns400 verifica a rejeição de state divergente.
func TestCallback_StateMismatchReturns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=outra", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "original"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestCallback_Success verifica o fluxo completo do callback.
func TestCallback_Success(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(_ context.Context, code string) (*model.Session, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want %q", code, "auth-code")
			}
			return testSession(), nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "xyz"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if loc := w.Header().Get("Location"); loc != "http://localhost:3000" {
		t.Errorf("Location = %q, want frontend base URL", loc)
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil || cookie.Value != "sess-1" {
		t.Error("expected session cookie after callback")
	}
}

// TestLogout_ClearsCookie verifica a destruição da sessão.
func TestLogout_ClearsCookie(t *testing.T) {
	var loggedOut string
	service := &mockAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if loggedOut != "sess-1" {
		t.Errorf("logged out session = %q, want %q", loggedOut, "sess-1")
	}

	cookie := sessionCookieFrom(t, w)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("expected session cookie to be cleared")
	}
}

// TestMe_ReturnsCurrentUser verifica a identidade do utilizador autenticado.
func TestMe_ReturnsCurrentUser(t *testing.T) {
	service := &mockAuthService{
		getCurrentUserFn: func(_ context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "maria@example.com", Name: "Maria"}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["email"] != "maria@example.com" {
		t.Errorf("email = %v, want maria@example.com", resp["email"])
	}
}

// TestMe_WithoutSessionReturns401 verifica o 401 sem cookie de sessão.
func TestMe_WithoutSessionReturns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
