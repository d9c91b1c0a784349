package ledger

import "errors"

// Ошибки журнала запусков.
var (
	// ErrNoDSN — строка подключения не сконфигурирована.
	ErrNoDSN = errors.New("ledger DSN is not configured")
)
