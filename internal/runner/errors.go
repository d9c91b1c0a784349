package runner

import "errors"

// Ошибки выполнения task. Локальны для одного (stage, sample):
// падение не прерывает tasks других образцов.
var (
	// ErrCommandFailed — внешний процесс завершился ненулевым кодом
	// или не смог запуститься.
	ErrCommandFailed = errors.New("external command failed")

	// ErrMissingOutput — код выхода 0, но объявленный выходной
	// glob не совпал ни с одним файлом.
	ErrMissingOutput = errors.New("declared output artifact missing")

	// ErrScratchDir — не удалось подготовить scratch-каталог.
	ErrScratchDir = errors.New("scratch directory setup failed")
)
