package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — один запуск пайплайна над обнаруженным набором образцов.
//
// Run создаётся после успешного построения графа и живёт до тех пор,
// пока каждый образец не достигнет терминального статуса.
type Run struct {
	// ID — уникальный идентификатор запуска.
	ID uuid.UUID `json:"id"`

	// Branch — выбранная при построении графа условная ветка
	// ("trim" или "direct"). Терминальна для всего запуска.
	Branch string `json:"branch"`

	// Status — текущий статус запуска.
	Status RunStatus `json:"status"`

	// Samples — количество обнаруженных образцов.
	Samples int `json:"samples"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки при FAILED/ABORTED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания запуска.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт новый запуск в статусе RUNNING.
func NewRun(branch string, samples int) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.New(),
		Branch:    branch,
		Status:    RunStatusRunning,
		Samples:   samples,
		StartedAt: &now,
		CreatedAt: now,
	}
}

// Duration возвращает продолжительность выполнения.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// MarkSucceeded переводит запуск в статус SUCCEEDED.
func (r *Run) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит запуск в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}

// MarkAborted переводит запуск в статус ABORTED.
func (r *Run) MarkAborted(err string) {
	now := time.Now()
	r.Status = RunStatusAborted
	r.FinishedAt = &now
	r.Error = err
}
