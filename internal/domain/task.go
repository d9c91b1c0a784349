package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task — одно конкретное выполнение стадии для одного образца.
//
// Task создаётся планировщиком ровно один раз для пары (stage, sample),
// когда каждый обязательный входной слот стадии получил tuple
// с этим ключом образца (join). Для whole-run стадий ключ пуст.
type Task struct {
	// ID — уникальный идентификатор task.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на родительский запуск.
	RunID uuid.UUID `json:"run_id"`

	// StageID — ID стадии пайплайна (StageDef.ID).
	StageID string `json:"stage_id"`

	// Sample — ключ образца; пустой для whole-run стадий.
	Sample SampleKey `json:"sample,omitempty"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// CPUs — количество CPU-слотов, которое task удерживает
	// на время выполнения.
	CPUs int `json:"cpus"`

	// Inputs — входные артефакты: имя канала → пути.
	Inputs map[string][]string `json:"inputs,omitempty"`

	// Outputs — выходные артефакты после успешного выполнения:
	// имя канала → пути в scratch-каталоге.
	Outputs map[string][]string `json:"outputs,omitempty"`

	// WorkDir — scratch-каталог task. Все побочные эффекты
	// внешней команды ограничены этим каталогом.
	WorkDir string `json:"work_dir,omitempty"`

	// ExitCode — код выхода внешнего процесса.
	ExitCode int `json:"exit_code"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания task.
	CreatedAt time.Time `json:"created_at"`
}

// NewTask создаёт task в статусе READY: join уже полон,
// ожидаются только свободные ресурсы.
func NewTask(runID uuid.UUID, stageID string, sample SampleKey, cpus int, inputs map[string][]string) *Task {
	return &Task{
		ID:        uuid.New(),
		RunID:     runID,
		StageID:   stageID,
		Sample:    sample,
		Status:    TaskStatusReady,
		CPUs:      cpus,
		Inputs:    inputs,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если task ещё не завершён.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если task завершён.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkRunning переводит task в статус RUNNING.
func (t *Task) MarkRunning() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
}

// MarkSucceeded переводит task в статус SUCCEEDED с выходными артефактами.
func (t *Task) MarkSucceeded(outputs map[string][]string) {
	now := time.Now()
	t.Status = TaskStatusSucceeded
	t.FinishedAt = &now
	t.Outputs = outputs
}

// MarkFailed переводит task в статус FAILED с ошибкой.
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.FinishedAt = &now
	t.Error = err
}
