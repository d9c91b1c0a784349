package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shaiso/Ampliflow/internal/config"
	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/events"
	"github.com/shaiso/Ampliflow/internal/ledger"
	"github.com/shaiso/Ampliflow/internal/pipeline"
	"github.com/shaiso/Ampliflow/internal/publisher"
	"github.com/shaiso/Ampliflow/internal/report"
	"github.com/shaiso/Ampliflow/internal/runner"
	"github.com/shaiso/Ampliflow/internal/scheduler"
)

// runtime — собранные зависимости выполнения запуска.
//
// Журнал и поток событий необязательны: их недоступность понижает
// наблюдаемость, но не мешает выполнению.
type runtime struct {
	cfg    *config.ExecutionContext
	logger *slog.Logger

	ledger  *ledger.RunLedger
	events  *events.Publisher
	closers []func()
}

// newRuntime подключает необязательные внешние зависимости.
func newRuntime(ctx context.Context, cfg *config.ExecutionContext, logger *slog.Logger) *runtime {
	rt := &runtime{cfg: cfg, logger: logger}

	if cfg.DBURL != "" {
		pool, err := ledger.NewPool(ctx, cfg.DBURL)
		if err != nil {
			logger.Warn("run ledger unavailable, results will not be recorded", "error", err)
		} else {
			rt.ledger = ledger.NewRunLedger(pool, logger)
			rt.closers = append(rt.closers, pool.Close)
			if err := rt.ledger.EnsureSchema(ctx); err != nil {
				logger.Warn("ledger schema check failed", "error", err)
				rt.ledger = nil
			}
		}
	}

	if cfg.AMQPURL != "" {
		conn, err := events.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("event broker unavailable, lifecycle events disabled", "error", err)
		} else {
			rt.closers = append(rt.closers, func() { conn.Close() })
			if err := events.SetupTopology(conn); err != nil {
				logger.Warn("failed to setup event topology", "error", err)
			}
			rt.events = events.NewPublisher(conn, logger)
		}
	}

	return rt
}

// close освобождает подключения.
func (rt *runtime) close() {
	for _, fn := range rt.closers {
		fn()
	}
}

// execute выполняет один запуск пайплайна над образцами: строит граф,
// прогоняет планировщик, печатает отчёт и записывает итог в журнал.
func (rt *runtime) execute(ctx context.Context, samples []domain.Sample) (*report.Report, *domain.Run, error) {
	graph, err := pipeline.Build(rt.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build pipeline graph: %w", err)
	}

	var sink scheduler.EventSink
	if rt.events != nil {
		sink = rt.events
	}

	sched := scheduler.New(scheduler.Config{
		Graph:     graph,
		Context:   rt.cfg,
		Executor:  runner.New(rt.cfg, rt.logger),
		Publisher: publisher.New(rt.cfg.ResultsDir, rt.logger),
		Seed:      pipeline.Seed(rt.cfg),
		Events:    sink,
		Logger:    rt.logger,
	})

	rep, run, err := sched.Run(ctx, samples)
	if err != nil {
		return nil, run, err
	}

	if err := rep.Write(os.Stdout); err != nil {
		return nil, run, fmt.Errorf("write report: %w", err)
	}

	if rt.ledger != nil {
		if err := rt.ledger.Record(ctx, run, rep, sched.Tasks()); err != nil {
			rt.logger.Warn("failed to record run in ledger", "error", err)
		}
	}

	return rep, run, nil
}
