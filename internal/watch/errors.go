package watch

import "errors"

// Ошибки наблюдателя.
var (
	// ErrInvalidCronExpr — невалидное cron-выражение расписания.
	ErrInvalidCronExpr = errors.New("invalid cron expression")
)
