package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shaiso/Ampliflow/internal/domain"
)

// SampleResult — итог одного образца.
type SampleResult struct {
	// Key — ключ образца.
	Key domain.SampleKey `json:"key"`

	// Status — итоговый статус образца.
	Status domain.SampleStatus `json:"status"`

	// TerminalStage — последняя стадия, которую образец успешно прошёл.
	TerminalStage string `json:"terminal_stage,omitempty"`

	// FailedStage — стадия, на которой упал task образца.
	// Пусто для SUCCEEDED и STALLED.
	FailedStage string `json:"failed_stage,omitempty"`

	// Error — текст ошибки упавшего task.
	Error string `json:"error,omitempty"`

	// Published — опубликованные артефакты образца.
	Published []string `json:"published,omitempty"`
}

// Report — итоговый отчёт запуска: по одной записи на каждый
// обнаруженный образец. Образцы, остановленные падением выше по
// графу, перечисляются как упавшие, а не выбрасываются молча.
type Report struct {
	// RunID — идентификатор запуска.
	RunID uuid.UUID `json:"run_id"`

	// Branch — выбранная условная ветка.
	Branch string `json:"branch"`

	// Samples — итоги образцов, отсортированные по ключу.
	Samples []SampleResult `json:"samples"`
}

// Add добавляет итог образца, сохраняя сортировку по ключу.
func (r *Report) Add(res SampleResult) {
	r.Samples = append(r.Samples, res)
	sort.Slice(r.Samples, func(i, j int) bool { return r.Samples[i].Key < r.Samples[j].Key })
}

// Succeeded возвращает количество успешных образцов.
func (r *Report) Succeeded() int {
	n := 0
	for _, s := range r.Samples {
		if s.Status == domain.SampleStatusSucceeded {
			n++
		}
	}
	return n
}

// Failed возвращает количество неуспешных образцов
// (упавших и остановившихся).
func (r *Report) Failed() int {
	return len(r.Samples) - r.Succeeded()
}

// AllSucceeded проверяет, достиг ли каждый образец всех
// терминальных стадий своей ветки.
func (r *Report) AllSucceeded() bool {
	return r.Failed() == 0
}

// ExitCode возвращает код выхода процесса: 0, если все образцы
// успешны, иначе 1.
func (r *Report) ExitCode() int {
	if r.AllSucceeded() {
		return 0
	}
	return 1
}

// Write выводит отчёт: по одной строке на образец плюс итоговая
// сводка. Формат стабилен и предназначен для глаз и grep.
func (r *Report) Write(w io.Writer) error {
	for _, s := range r.Samples {
		line := fmt.Sprintf("sample=%s status=%s", s.Key, s.Status)
		switch s.Status {
		case domain.SampleStatusSucceeded:
			line += fmt.Sprintf(" terminal_stage=%s", s.TerminalStage)
		case domain.SampleStatusFailed:
			line += fmt.Sprintf(" failed_stage=%s", s.FailedStage)
		}
		if len(s.Published) > 0 {
			line += fmt.Sprintf(" published=%s", strings.Join(s.Published, ","))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "run=%s branch=%s samples=%d succeeded=%d failed=%d\n",
		r.RunID, r.Branch, len(r.Samples), r.Succeeded(), r.Failed())
	return err
}
