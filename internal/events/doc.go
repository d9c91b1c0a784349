// Package events публикует события жизненного цикла запуска в RabbitMQ.
//
// Поток событий необязателен и best-effort: недоступность брокера
// и ошибки публикации логируются и никогда не влияют на выполнение
// пайплайна. Потребители — внешние дашборды и уведомления.
package events
