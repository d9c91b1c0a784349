package domain

// TaskStatus — статус выполнения task.
//
// Жизненный цикл:
//
//	PENDING → READY → RUNNING → SUCCEEDED
//	                          ↘ FAILED
//
// Терминальный статус неизменяем: после SUCCEEDED/FAILED
// task никогда не планируется повторно.
type TaskStatus string

const (
	// TaskStatusPending — task создан, но join по входным каналам ещё не полон.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusReady — все входные tuple для ключа образца доступны,
	// task ожидает свободных CPU-слотов.
	TaskStatusReady TaskStatus = "READY"

	// TaskStatusRunning — внешний процесс выполняется.
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusSucceeded — процесс завершился с кодом 0
	// и все объявленные выходные артефакты найдены.
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"

	// TaskStatusFailed — ненулевой код выхода или отсутствие
	// объявленного выходного артефакта.
	TaskStatusFailed TaskStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// RunStatus — статус выполнения запуска пайплайна.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ FAILED
//	        ↘ ABORTED (фатальная ошибка или отмена)
type RunStatus string

const (
	// RunStatusRunning — запуск в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — каждый образец достиг всех терминальных стадий.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — хотя бы один образец не достиг терминальной стадии.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusAborted — запуск прерван до завершения.
	RunStatusAborted RunStatus = "ABORTED"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusAborted:
		return true
	default:
		return false
	}
}
