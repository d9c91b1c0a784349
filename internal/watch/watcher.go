package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Ampliflow/internal/discovery"
	"github.com/shaiso/Ampliflow/internal/domain"
)

// cronParser — парсер cron-выражений расписания.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// LaunchFunc запускает пайплайн над новыми образцами.
type LaunchFunc func(ctx context.Context, samples []domain.Sample) error

// Watcher пересканирует входной каталог по расписанию.
type Watcher struct {
	inputDir string
	schedule cron.Schedule
	launch   LaunchFunc
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[domain.SampleKey]bool
}

// New создаёт Watcher с cron-расписанием.
func New(inputDir, cronExpr string, launch LaunchFunc, logger *slog.Logger) (*Watcher, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCronExpr, cronExpr, err)
	}

	return &Watcher{
		inputDir: inputDir,
		schedule: schedule,
		launch:   launch,
		logger:   logger,
		seen:     make(map[domain.SampleKey]bool),
	}, nil
}

// Run выполняет цикл наблюдения до отмены контекста.
// Первый скан выполняется сразу, не дожидаясь расписания.
func (w *Watcher) Run(ctx context.Context) error {
	w.tick(ctx)

	for {
		next := w.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			w.tick(ctx)
		}
	}
}

// tick сканирует каталог и запускает пайплайн для новых образцов.
func (w *Watcher) tick(ctx context.Context) {
	samples, err := discovery.Scan(w.inputDir)
	if err != nil {
		if errors.Is(err, discovery.ErrNoSamples) {
			w.logger.Debug("input directory is empty", "dir", w.inputDir)
			return
		}
		// Каталог в неконсистентном состоянии (например, идёт
		// копирование второго файла пары). Ждём следующего тика.
		w.logger.Warn("input scan failed, will retry on next tick", "error", err)
		return
	}

	fresh := w.filterSeen(samples)
	if len(fresh) == 0 {
		w.logger.Debug("no new samples", "dir", w.inputDir)
		return
	}

	w.logger.Info("new samples discovered", "count", len(fresh))

	if err := w.launch(ctx, fresh); err != nil {
		w.logger.Error("launch failed", "error", err)
		// Ключи уже помечены виденными: повторный запуск тех же
		// образцов дал бы коллизии имён при публикации.
	}
}

// filterSeen отбирает ещё не виденные образцы и помечает их.
func (w *Watcher) filterSeen(samples []domain.Sample) []domain.Sample {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []domain.Sample
	for _, s := range samples {
		if w.seen[s.Key] {
			continue
		}
		w.seen[s.Key] = true
		fresh = append(fresh, s)
	}
	return fresh
}
