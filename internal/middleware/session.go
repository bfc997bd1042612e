// Package middleware fornece os middlewares HTTP.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/emuangala/formulario/internal/model"
)

const sessionCookieName = "session_id"

// contextKey é um tipo seguro para chaves de contexto.
type contextKey string

// userIDContextKey guarda o ID do utilizador no contexto da requisição.
var userIDContextKey = contextKey("user_id")

// SessionFinder é a interface mínima de consulta de sessões.
// Subconjunto de repository.SessionRepository.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware devolve um middleware que lê a sessão do cookie
// HttpOnly e valida a sua vigência.
// Injeta o ID do utilizador autenticado no contexto da requisição.
// Requisições não autenticadas recebem 401 Unauthorized.
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Obter o ID da sessão do cookie
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. Validar a vigência da sessão
			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. Injetar o ID do utilizador autenticado no contexto
			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext obtém o ID do utilizador do contexto da requisição.
// Só é válido em requisições que passaram pelo middleware de sessão.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID injeta o ID do utilizador num contexto.
// Usado em testes e fora do middleware.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
