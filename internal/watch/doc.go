// Package watch периодически пересканирует входной каталог и
// запускает пайплайн для новых образцов.
//
// Расписание задаётся cron-выражением. Каждый тик сканирует каталог,
// отбрасывает уже обработанные ключи и передаёт остаток в callback
// запуска. Состояние "уже виденных" ключей живёт только в памяти
// процесса.
package watch
