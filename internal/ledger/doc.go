// Package ledger ведёт историю запусков в PostgreSQL.
//
// Журнал необязателен и строго write-only: выполнение запуска никогда
// не читает состояние из БД и не зависит от её доступности. Запись
// журнала — наблюдаемость, а не контрольная точка.
package ledger
