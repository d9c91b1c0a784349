package scheduler

import (
	"sync"

	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/engine"
	"github.com/shaiso/Ampliflow/internal/report"
)

// failure — первое зафиксированное падение образца.
type failure struct {
	stage  string
	errMsg string
}

// RunState — состояние выполнения одного запуска в памяти.
//
// Отслеживает, какие пары (stage, sample) уже запланированы
// (идемпотентность планирования), какие завершились и чем,
// и какие артефакты опубликованы.
type RunState struct {
	// Run — данные запуска.
	Run *domain.Run

	// Graph — граф выбранной ветки.
	Graph *engine.Graph

	mu sync.RWMutex

	// scheduled — созданные пары (stageID → ключи).
	// Пара никогда не планируется повторно.
	scheduled map[string]map[domain.SampleKey]bool

	// succeeded / failed — терминальные исходы пар.
	succeeded map[string]map[domain.SampleKey]bool
	failed    map[string]map[domain.SampleKey]bool

	// failures — первое падение каждого образца.
	failures map[domain.SampleKey]failure

	// published — опубликованные артефакты по образцам.
	published map[domain.SampleKey][]string

	// tasks — все созданные tasks.
	tasks []*domain.Task
}

// NewRunState создаёт состояние запуска.
func NewRunState(run *domain.Run, graph *engine.Graph) *RunState {
	return &RunState{
		Run:       run,
		Graph:     graph,
		scheduled: make(map[string]map[domain.SampleKey]bool),
		succeeded: make(map[string]map[domain.SampleKey]bool),
		failed:    make(map[string]map[domain.SampleKey]bool),
		failures:  make(map[domain.SampleKey]failure),
		published: make(map[domain.SampleKey][]string),
	}
}

// IsScheduled проверяет, создан ли уже task для пары (stage, sample).
func (s *RunState) IsScheduled(stageID string, key domain.SampleKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduled[stageID][key]
}

// MarkScheduled фиксирует создание task для пары (stage, sample).
func (s *RunState) MarkScheduled(task *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduled[task.StageID] == nil {
		s.scheduled[task.StageID] = make(map[domain.SampleKey]bool)
	}
	s.scheduled[task.StageID][task.Sample] = true
	s.tasks = append(s.tasks, task)
}

// MarkSucceeded фиксирует успешное завершение пары.
func (s *RunState) MarkSucceeded(stageID string, key domain.SampleKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.succeeded[stageID] == nil {
		s.succeeded[stageID] = make(map[domain.SampleKey]bool)
	}
	s.succeeded[stageID][key] = true
}

// MarkFailed фиксирует падение пары. Для образца запоминается
// только первое падение — оно и попадает в отчёт.
func (s *RunState) MarkFailed(stageID string, key domain.SampleKey, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[stageID] == nil {
		s.failed[stageID] = make(map[domain.SampleKey]bool)
	}
	s.failed[stageID][key] = true

	if _, exists := s.failures[key]; !exists {
		s.failures[key] = failure{stage: stageID, errMsg: errMsg}
	}
}

// RunLevelFailure возвращает стадию первого упавшего whole-run task
// (task с пустым ключом образца), если такой был.
func (s *RunState) RunLevelFailure() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.failures[""]
	return f.stage, ok
}

// IsTerminal проверяет, завершилась ли пара (успехом или падением).
func (s *RunState) IsTerminal(stageID string, key domain.SampleKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.succeeded[stageID][key] || s.failed[stageID][key]
}

// HasSucceeded проверяет успех пары.
func (s *RunState) HasSucceeded(stageID string, key domain.SampleKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.succeeded[stageID][key]
}

// AddPublished фиксирует опубликованные артефакты образца.
func (s *RunState) AddPublished(key domain.SampleKey, paths []string) {
	if len(paths) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[key] = append(s.published[key], paths...)
}

// Tasks возвращает все созданные tasks.
func (s *RunState) Tasks() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// BuildReport формирует итоговый отчёт по всем обнаруженным образцам.
//
// Статус образца:
//   - SUCCEEDED — каждая sink-стадия ветки завершилась успехом;
//   - FAILED — зафиксировано падение task (с указанием стадии);
//   - STALLED — ни успеха, ни падения: запуск остановился без прогресса.
func (s *RunState) BuildReport(samples []domain.Sample) *report.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep := &report.Report{
		RunID:  s.Run.ID,
		Branch: s.Run.Branch,
	}

	sinks := s.Graph.SinkStages()

	for _, sample := range samples {
		res := report.SampleResult{
			Key:       sample.Key,
			Published: s.published[sample.Key],
		}

		if f, fell := s.failures[sample.Key]; fell {
			res.Status = domain.SampleStatusFailed
			res.FailedStage = f.stage
			res.Error = f.errMsg
		} else if s.allSinksSucceeded(sample.Key, sinks) {
			res.Status = domain.SampleStatusSucceeded
		} else {
			res.Status = domain.SampleStatusStalled
		}

		res.TerminalStage = s.lastSucceededStage(sample.Key)
		rep.Add(res)
	}

	return rep
}

// allSinksSucceeded проверяет успех всех sink-стадий для ключа.
// Вызывается под блокировкой.
func (s *RunState) allSinksSucceeded(key domain.SampleKey, sinks []*engine.StageDef) bool {
	for _, sink := range sinks {
		if !s.succeeded[sink.ID][key] {
			return false
		}
	}
	return len(sinks) > 0
}

// lastSucceededStage возвращает последнюю (в топологическом порядке)
// успешно пройденную образцом стадию. Вызывается под блокировкой.
func (s *RunState) lastSucceededStage(key domain.SampleKey) string {
	last := ""
	for _, st := range s.Graph.Stages {
		if s.succeeded[st.ID][key] {
			last = st.ID
		}
	}
	return last
}
