package scheduler

import "errors"

// Ошибки планировщика.
var (
	// ErrSeedFailed — не удалось наполнить каналы-источники.
	// Фатальна: ни один task ещё не создан.
	ErrSeedFailed = errors.New("seeding source channels failed")

	// ErrRunStalled — ни один канал не может продвинуться, tasks
	// не выполняются, но часть образцов не достигла терминального
	// статуса. Эти образцы отчитываются как упавшие.
	ErrRunStalled = errors.New("run stalled with non-terminal samples")

	// ErrRunAborted — запуск прерван до завершения; выполняющиеся
	// процессы остановлены, ресурсы освобождены.
	ErrRunAborted = errors.New("run aborted")
)
