package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/report"
)

// RunLedger — журнал запусков.
type RunLedger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRunLedger создаёт новый RunLedger.
func NewRunLedger(pool *pgxpool.Pool, logger *slog.Logger) *RunLedger {
	return &RunLedger{pool: pool, logger: logger}
}

// EnsureSchema создаёт таблицы журнала, если их ещё нет.
func (l *RunLedger) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`
		CREATE TABLE IF NOT EXISTS runs (
			id          UUID PRIMARY KEY,
			branch      TEXT NOT NULL,
			status      TEXT NOT NULL,
			samples     INT NOT NULL,
			error       TEXT,
			started_at  TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`
		CREATE TABLE IF NOT EXISTS run_samples (
			run_id         UUID NOT NULL REFERENCES runs(id),
			sample_key     TEXT NOT NULL,
			status         TEXT NOT NULL,
			terminal_stage TEXT,
			failed_stage   TEXT,
			error          TEXT,
			published      TEXT[],
			PRIMARY KEY (run_id, sample_key)
		)`,
		`
		CREATE TABLE IF NOT EXISTS run_tasks (
			id          UUID PRIMARY KEY,
			run_id      UUID NOT NULL REFERENCES runs(id),
			stage_id    TEXT NOT NULL,
			sample_key  TEXT NOT NULL,
			status      TEXT NOT NULL,
			cpus        INT NOT NULL,
			exit_code   INT,
			error       TEXT,
			started_at  TIMESTAMPTZ,
			finished_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range ddl {
		if _, err := l.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Record записывает завершённый запуск целиком: строку запуска,
// исходы образцов и все tasks.
func (l *RunLedger) Record(ctx context.Context, run *domain.Run, rep *report.Report, tasks []*domain.Task) error {
	query := `
		INSERT INTO runs (id, branch, status, samples, error, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := l.pool.Exec(ctx, query,
		run.ID,
		run.Branch,
		run.Status,
		run.Samples,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range rep.Samples {
		query := `
			INSERT INTO run_samples (run_id, sample_key, status, terminal_stage, failed_stage, error, published)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := l.pool.Exec(ctx, query,
			run.ID,
			res.Key,
			res.Status,
			nullString(res.TerminalStage),
			nullString(res.FailedStage),
			nullString(res.Error),
			res.Published,
		)
		if err != nil {
			return fmt.Errorf("insert sample %s: %w", res.Key, err)
		}
	}

	for _, task := range tasks {
		query := `
			INSERT INTO run_tasks (id, run_id, stage_id, sample_key, status, cpus, exit_code, error, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := l.pool.Exec(ctx, query,
			task.ID,
			task.RunID,
			task.StageID,
			task.Sample,
			task.Status,
			task.CPUs,
			task.ExitCode,
			nullString(task.Error),
			task.StartedAt,
			task.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", task.ID, err)
		}
	}

	l.logger.Debug("run recorded",
		"run_id", run.ID,
		"samples", len(rep.Samples),
		"tasks", len(tasks),
	)
	return nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
