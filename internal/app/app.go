// Package app orquestra o arranque da aplicação.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/emuangala/formulario/internal/auth"
	"github.com/emuangala/formulario/internal/config"
	"github.com/emuangala/formulario/internal/database"
	"github.com/emuangala/formulario/internal/formulario"
	"github.com/emuangala/formulario/internal/handler"
	"github.com/emuangala/formulario/internal/logger"
	"github.com/emuangala/formulario/internal/metrics"
	"github.com/emuangala/formulario/internal/middleware"
	"github.com/emuangala/formulario/internal/repository"
	"github.com/emuangala/formulario/internal/security"
	"github.com/emuangala/formulario/internal/storage"
	"github.com/emuangala/formulario/internal/worker/cleanup"
)

// Init inicializa a aplicação.
// Configura o log JSON estruturado e carrega a Config das variáveis de
// ambiente. O writer indicado passa a ser o destino dos logs.
func Init(w io.Writer) (*config.Config, error) {
	// 1. Log primeiro, para que o carregamento da config já possa logar
	logger.SetupDefault(w)

	// 2. Carregar a configuração
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run é o ponto de entrada da aplicação.
// Interpreta o subcomando e arranca no modo correspondente.
// args recebe os.Args[1:].
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck é leve e dispensa a inicialização completa
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe arranca o servidor da API.
// Abre a ligação à base de dados, liga todas as dependências e sobe o
// servidor HTTP. SIGINT ou SIGTERM disparam o encerramento gracioso.
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. Base de dados
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. Armazenamento de objetos
	objectStorage, err := storage.NewGCSStorage(ctx, cfg.StorageBucket, cfg.StoragePublicBaseURL)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	defer objectStorage.Close()

	// 3. Repositórios
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	formRepo := repository.NewPostgresFormularioRepo(db)

	// 4. Métricas
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. Serviços de domínio
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	sanitizer := security.NewTextSanitizer()
	formService := formulario.NewService(formRepo, objectStorage, sanitizer, collector)

	// 6. Limites de requisição (config em req/min, limiter em req/seg)
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rateLimitPerSecond(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.UploadRate = rateLimitPerSecond(cfg.RateLimitUpload)
	rateLimiterCfg.UploadBurst = cfg.RateLimitUpload
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. Router
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		FormularioService: formService,
		UploadMaxSize:     cfg.UploadMaxSize,

		MetricsCollector: collector,
		MetricsGatherer:  registry,

		HealthCheck: db.Ping,
	}

	router := handler.NewRouter(deps)

	// 8. Servidor HTTP
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Encerramento gracioso por sinal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker arranca o modo worker.
// Executa a limpeza periódica das sessões expiradas até receber
// SIGINT ou SIGTERM.
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// Uma execução imediata no arranque
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	// Execução periódica no goroutine principal (bloqueante)
	cleanupJob.RunPeriodically(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate aplica as migrações pendentes da base de dados por ordem.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck executa a verificação de saúde.
// Subcomando para o healthcheck do Docker em ambiente distroless.
// Chama o endpoint /health e devolve o resultado.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// rateLimitPerSecond converte um limite em req/min para req/seg.
func rateLimitPerSecond(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}

// maskDatabaseURL esconde as credenciais do URL da base de dados.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
