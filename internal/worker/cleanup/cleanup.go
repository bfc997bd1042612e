// Package cleanup fornece o job de remoção automática de sessões expiradas.
// As sessões cujo expires_at já passou são apagadas num batch periódico.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor abstrai o ExecContext do SQL.
// Aceita *sql.DB ou *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob é o job de remoção das sessões expiradas.
// Desenhado como batch periódico com remoção idempotente.
type CleanupJob struct {
	db     Executor
	logger *slog.Logger
}

// NewCleanupJob cria um CleanupJob.
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:     db,
		logger: logger,
	}
}

// Run apaga as sessões com expires_at anterior ao instante atual.
// Idempotente: a ausência de sessões expiradas não é um erro.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM sessions WHERE expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("falha na execução do job de limpeza de sessões",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to run session cleanup: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("falha na obtenção do número de sessões removidas",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("job de limpeza de sessões concluído",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunPeriodically executa o job no intervalo indicado até o contexto ser
// cancelado. Erros de execução são registados e a cadência mantém-se.
func (j *CleanupJob) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("execução periódica da limpeza falhou",
					slog.String("error", err.Error()),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}
