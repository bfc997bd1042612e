package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/emuangala/formulario/internal/metrics"
	"github.com/emuangala/formulario/internal/middleware"
)

// RouterDeps agrupa as dependências do NewRouter.
type RouterDeps struct {
	// Middlewares
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// Autenticação
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// Formulários
	FormularioService FormularioServiceInterface
	UploadMaxSize     int64

	// Observabilidade
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// Verificação de vida da base de dados
	HealthCheck func() error
}

// NewRouter devolve um chi.Router com todas as rotas da API e a cadeia de
// middlewares configuradas.
//
// Ordem de execução da cadeia:
//
//	Recovery → SecurityHeaders → CORS → Logging → CSRF → Session → RateLimit(General)
//
// As rotas de autenticação (/auth/*), /health e /metrics ficam fora da
// cadeia de sessão.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.MetricsCollector))
	}
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.MetricsCollector)
	formHandler := NewFormularioHandler(deps.FormularioService, deps.UploadMaxSize)

	// --- Rotas sem sessão ---

	r.Get("/health", healthHandler(deps.HealthCheck))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// Autenticação
	r.Route("/auth", func(r chi.Router) {
		r.Post("/registrar", authHandler.SignUp)
		r.Post("/entrar", authHandler.SignIn)
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- Rotas com sessão obrigatória ---
	// Cadeia: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/formularios", func(r chi.Router) {
			r.Get("/", formHandler.List)
			// Submissões com upload têm limite próprio
			r.With(deps.RateLimiter.UploadMiddleware()).Post("/", formHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", formHandler.Get)
				r.With(deps.RateLimiter.UploadMiddleware()).Put("/", formHandler.Update)
				r.Delete("/", formHandler.Delete)
			})
		})
	})

	return r
}

// healthHandler devolve o handler do endpoint de saúde.
// Responde 200 com o estado da base de dados ou 503 quando inacessível.
func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if check != nil {
			if err := check(); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status":   "unhealthy",
					"database": "unreachable",
				})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	}
}
