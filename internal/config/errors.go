package config

import "errors"

// Ошибки конфигурации. Все они фатальны для запуска (SetupError).
var (
	// ErrInvalidProfile — YAML-профиль не парсится.
	ErrInvalidProfile = errors.New("invalid run profile")

	// ErrMissingInputDir — не задан каталог входных чтений.
	ErrMissingInputDir = errors.New("input directory is not configured")

	// ErrMissingResultsDir — не задан каталог результатов.
	ErrMissingResultsDir = errors.New("results directory is not configured")

	// ErrMissingReference — референсная последовательность не задана
	// или файл отсутствует.
	ErrMissingReference = errors.New("reference sequence is missing")

	// ErrMissingPrimerBed — таблица праймеров задана, но файл отсутствует.
	ErrMissingPrimerBed = errors.New("primer bed file is missing")

	// ErrInvalidCPUs — бюджет CPU-слотов не положительный.
	ErrInvalidCPUs = errors.New("cpu budget must be positive")

	// ErrUnknownEngine — неизвестный движок картирования.
	ErrUnknownEngine = errors.New("unknown mapping engine")
)
