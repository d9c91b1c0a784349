// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Все режимы используют единый формат логирования;
// режим watch экспортирует метрики на /metrics endpoint.
package telemetry
