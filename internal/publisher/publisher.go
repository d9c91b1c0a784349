package publisher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/telemetry"
)

// Publisher копирует объявленные артефакты в каталог результатов.
//
// Публикация — best-effort экстернализация, отвязанная от
// корректности пайплайна: ошибка копирования логируется как
// PublishError, но не отменяет успех произведшего артефакт task.
type Publisher struct {
	resultsDir string
	logger     *slog.Logger

	maxRetries uint64
}

// New создаёт новый Publisher.
func New(resultsDir string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		resultsDir: resultsDir,
		logger:     logger,
		maxRetries: 3,
	}
}

// Publish копирует (не перемещает) артефакты в каталог результатов,
// сохраняя имена файлов, выбранные стадией. Никакого дополнительного
// неймспейсинга publisher не навязывает.
//
// Возвращает пути успешно опубликованных файлов и накопленную
// ошибку по неудавшимся; частичный успех возможен.
func (p *Publisher) Publish(key domain.SampleKey, stageID string, paths []string) ([]string, error) {
	if err := os.MkdirAll(p.resultsDir, 0o755); err != nil {
		return nil, &PublishError{Sample: key, Stage: stageID, Err: err}
	}

	logger := telemetry.WithStage(telemetry.WithSample(p.logger, key.String()), stageID)

	var published []string
	var errs []error

	for _, src := range paths {
		dst := filepath.Join(p.resultsDir, filepath.Base(src))

		if err := p.copyOne(src, dst); err != nil {
			telemetry.PublishFailures.Inc()
			logger.Warn("artifact publish failed", "artifact", src, "error", err)
			errs = append(errs, &PublishError{Sample: key, Stage: stageID, Artifact: src, Err: err})
			continue
		}

		logger.Debug("artifact published", "artifact", dst)
		published = append(published, dst)
	}

	return published, errors.Join(errs...)
}

// copyOne копирует один артефакт с повторными попытками
// (экспоненциальная задержка, максимум maxRetries повторов).
// Коллизия имени с уже опубликованным чужим артефактом — ошибка
// без повторов.
func (p *Publisher) copyOne(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrNameCollision, filepath.Base(dst))
	}

	op := func() error {
		return copyFile(src, dst)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	return backoff.Retry(op, backoff.WithMaxRetries(bo, p.maxRetries))
}

// copyFile копирует файл целиком. Частично записанная копия
// при ошибке удаляется.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}
