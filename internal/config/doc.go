// Package config загружает и валидирует ExecutionContext —
// конфигурацию запуска пайплайна.
//
// Источники (в порядке возрастания приоритета):
//   - YAML-профиль (--profile)
//   - переменные окружения AMPLIFLOW_*
//   - флаги CLI
//
// Контекст разрешается ровно один раз при старте и после этого
// неизменяем; наличие primer_bed выбирает условную ветку графа.
package config
