package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Ampliflow/internal/config"
	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/engine"
	"github.com/shaiso/Ampliflow/internal/report"
	"github.com/shaiso/Ampliflow/internal/telemetry"
)

// Executor выполняет внешнюю команду одного task и возвращает
// выходные артефакты по слотам. Реализация: runner.Runner.
type Executor interface {
	Execute(ctx context.Context, task *domain.Task, stage *engine.StageDef) (map[string][]string, error)
}

// ArtifactPublisher экстернализует опубликованные артефакты.
// Реализация: publisher.Publisher.
type ArtifactPublisher interface {
	Publish(key domain.SampleKey, stageID string, paths []string) ([]string, error)
}

// EventSink — необязательный приёмник событий жизненного цикла
// (events.Publisher). Ошибки приёмника логируются и не влияют
// на выполнение.
type EventSink interface {
	TaskStarted(ctx context.Context, task *domain.Task) error
	TaskFinished(ctx context.Context, task *domain.Task) error
	RunFinished(ctx context.Context, run *domain.Run, rep *report.Report) error
}

// SeedFunc наполняет каналы-источники графа перед стартом цикла
// и закрывает их. Реализация для ампликонного пайплайна: pipeline.Seed.
type SeedFunc func(g *engine.Graph, samples []domain.Sample) error

// taskDone — событие завершения task в цикле планировщика.
type taskDone struct {
	task    *domain.Task
	stage   *engine.StageDef
	outputs map[string][]string
	err     error
}

// Scheduler превращает статический граф и наполненные каналы
// в событийное выполнение.
//
// Вся бухгалтерия графа и каналов — создание tasks, бюджет CPU,
// закрытие каналов — живёт в единственной горутине цикла Run;
// захват и освобождение слотов атомарны по построению. Параллелизм
// реальный только на уровне внешних процессов.
type Scheduler struct {
	graph  *engine.Graph
	cfg    *config.ExecutionContext
	exec   Executor
	pub    ArtifactPublisher
	events EventSink
	seed   SeedFunc
	logger *slog.Logger

	// Состояние цикла. Доступ только из горутины Run.
	availCPUs int
	running   int
	ready     []*domain.Task // FIFO в порядке прибытия join'ов
	done      chan taskDone

	state *RunState // устанавливается в начале Run
}

// Config — конфигурация Scheduler.
type Config struct {
	Graph     *engine.Graph
	Context   *config.ExecutionContext
	Executor  Executor
	Publisher ArtifactPublisher

	// Seed наполняет каналы-источники перед стартом цикла.
	Seed SeedFunc

	// Events — необязательный приёмник событий (может быть nil).
	Events EventSink

	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		graph:     cfg.Graph,
		cfg:       cfg.Context,
		exec:      cfg.Executor,
		pub:       cfg.Publisher,
		events:    cfg.Events,
		seed:      cfg.Seed,
		logger:    logger,
		availCPUs: cfg.Context.CPUs,
		done:      make(chan taskDone),
	}
}

// Run выполняет запуск пайплайна над обнаруженными образцами.
//
// Возвращает отчёт и данные запуска. Ошибка непустая только для
// фатальных исходов (ошибка наполнения источников, прерывание);
// падения отдельных tasks изолированы по образцам и отражаются
// в отчёте, а не в ошибке.
func (s *Scheduler) Run(ctx context.Context, samples []domain.Sample) (*report.Report, *domain.Run, error) {
	run := domain.NewRun(s.graph.Branch.String(), len(samples))
	state := NewRunState(run, s.graph)
	s.state = state
	logger := telemetry.WithRunID(s.logger, run.ID.String())

	if err := s.seed(s.graph, samples); err != nil {
		run.MarkAborted(err.Error())
		return nil, run, fmt.Errorf("%w: %v", ErrSeedFailed, err)
	}

	logger.Info("run started",
		"branch", run.Branch,
		"samples", len(samples),
		"stages", s.graph.Size(),
		"cpu_budget", s.cfg.CPUs,
	)

	for {
		s.createReadyTasks(run, state)
		s.dispatch(ctx, state, logger)

		if s.running == 0 && len(s.ready) == 0 {
			// Событий больше не будет: ни один канал не может
			// продвинуться. Либо всё завершено, либо запуск
			// остановился (stall).
			break
		}

		select {
		case d := <-s.done:
			s.onTaskDone(ctx, state, d, logger)
		case <-ctx.Done():
			return s.abort(ctx, state, logger)
		}
	}

	s.closeAllChannels()
	rep := state.BuildReport(samples)
	s.finalize(ctx, run, rep, state, logger)

	return rep, run, nil
}

// Tasks возвращает все tasks, созданные последним запуском.
func (s *Scheduler) Tasks() []*domain.Task {
	if s.state == nil {
		return nil
	}
	return s.state.Tasks()
}

// createReadyTasks создаёт tasks для всех пар (stage, key),
// у которых join полон и которые ещё не планировались.
//
// Join полон, когда каждый обязательный входной слот имеет tuple
// для ключа; value-каналы считаются присутствующими для любого
// ключа, как только их единственный tuple эмитнут. Whole-run стадия
// планируется один раз с пустым ключом, когда наполнены все её
// value-входы.
func (s *Scheduler) createReadyTasks(run *domain.Run, state *RunState) {
	for _, stage := range s.graph.Stages {
		for _, key := range s.candidateKeys(stage) {
			if state.IsScheduled(stage.ID, key) {
				continue
			}

			inputs := s.collectInputs(stage, key)
			if inputs == nil {
				continue // join ещё не полон
			}

			task := domain.NewTask(run.ID, stage.ID, key, stage.CPUs, inputs)
			state.MarkScheduled(task)
			s.ready = append(s.ready, task)
		}
	}
}

// candidateKeys возвращает ключи-кандидаты планирования стадии.
// Для per-sample стадии это ключи первого per-sample входного канала
// в порядке прибытия; единственный кандидат whole-run стадии —
// пустой ключ.
func (s *Scheduler) candidateKeys(stage *engine.StageDef) []domain.SampleKey {
	if !stage.PerSample {
		return []domain.SampleKey{""}
	}
	for _, in := range stage.Inputs {
		ch := s.graph.Channel(in.Channel)
		if ch.Kind == engine.SampleChannel {
			return ch.Keys()
		}
	}
	return nil
}

// collectInputs собирает входные tuple для ключа.
// Возвращает nil, если join не полон.
func (s *Scheduler) collectInputs(stage *engine.StageDef, key domain.SampleKey) map[string][]string {
	inputs := make(map[string][]string, len(stage.Inputs))
	for _, in := range stage.Inputs {
		t, ok := s.graph.Channel(in.Channel).Get(key)
		if !ok {
			return nil
		}
		inputs[in.Channel] = t.Payload
	}
	return inputs
}

// dispatch запускает готовые tasks, пока хватает CPU-слотов.
//
// Очередь строго FIFO: если головному task не хватает слотов, он
// ждёт освобождения, а не пропускает вперёд более лёгкие tasks.
func (s *Scheduler) dispatch(ctx context.Context, state *RunState, logger *slog.Logger) {
	for len(s.ready) > 0 && s.ready[0].CPUs <= s.availCPUs {
		task := s.ready[0]
		s.ready = s.ready[1:]

		s.availCPUs -= task.CPUs
		s.running++
		task.MarkRunning()

		telemetry.TasksRunning.Inc()
		telemetry.CPUSlotsInUse.Set(float64(s.cfg.CPUs - s.availCPUs))

		stage := s.graph.Stage(task.StageID)
		logger.Debug("task started",
			"stage", stage.ID,
			"sample", task.Sample,
			"cpus", task.CPUs,
			"cpus_available", s.availCPUs,
		)

		if s.events != nil {
			if err := s.events.TaskStarted(ctx, task); err != nil {
				logger.Warn("failed to publish task.started event", "error", err)
			}
		}

		go func(task *domain.Task, stage *engine.StageDef) {
			outputs, err := s.exec.Execute(ctx, task, stage)
			s.done <- taskDone{task: task, stage: stage, outputs: outputs, err: err}
		}(task, stage)
	}
}

// onTaskDone обрабатывает завершение task: освобождает слоты,
// фиксирует исход, эмитит выходные tuple и публикует артефакты.
func (s *Scheduler) onTaskDone(ctx context.Context, state *RunState, d taskDone, logger *slog.Logger) {
	s.availCPUs += d.task.CPUs
	s.running--
	telemetry.TasksRunning.Dec()
	telemetry.CPUSlotsInUse.Set(float64(s.cfg.CPUs - s.availCPUs))

	if d.err != nil {
		d.task.MarkFailed(d.err.Error())
		state.MarkFailed(d.stage.ID, d.task.Sample, d.err.Error())
		telemetry.TasksTotal.WithLabelValues(d.stage.ID, string(domain.TaskStatusFailed)).Inc()

		logger.Warn("task failed",
			"stage", d.stage.ID,
			"sample", d.task.Sample,
			"exit_code", d.task.ExitCode,
			"error", d.err,
		)
	} else {
		d.task.MarkSucceeded(d.outputs)
		state.MarkSucceeded(d.stage.ID, d.task.Sample)
		telemetry.TasksTotal.WithLabelValues(d.stage.ID, string(domain.TaskStatusSucceeded)).Inc()
		telemetry.TaskDuration.WithLabelValues(d.stage.ID).Observe(d.task.Duration().Seconds())

		logger.Debug("task succeeded",
			"stage", d.stage.ID,
			"sample", d.task.Sample,
			"duration", d.task.Duration(),
		)

		s.emitOutputs(state, d, logger)
	}

	if s.events != nil {
		if err := s.events.TaskFinished(ctx, d.task); err != nil {
			logger.Warn("failed to publish task.finished event", "error", err)
		}
	}

	s.closeExhaustedChannels(state)
}

// emitOutputs эмитит выходные артефакты успешного task в исходящие
// каналы (с тем же ключом образца) и публикует помеченные слоты.
func (s *Scheduler) emitOutputs(state *RunState, d taskDone, logger *slog.Logger) {
	for _, out := range d.stage.Outputs {
		paths := d.outputs[out.Channel]

		tuple := engine.Tuple{Payload: paths}
		ch := s.graph.Channel(out.Channel)
		if ch.Kind == engine.SampleChannel {
			tuple.Key = d.task.Sample
		}
		if err := ch.Emit(tuple); err != nil {
			// Нарушение контракта канала при работающем планировщике —
			// программная ошибка, а не сбой данных.
			logger.Error("output emit failed", "channel", out.Channel, "error", err)
			continue
		}

		if out.Publish {
			published, err := s.pub.Publish(d.task.Sample, d.stage.ID, paths)
			if err != nil {
				// PublishError нефатальна: task остаётся успешным.
				logger.Warn("artifact publication incomplete",
					"stage", d.stage.ID,
					"sample", d.task.Sample,
					"error", err,
				)
			}
			state.AddPublished(d.task.Sample, published)
		}
	}
}

// closeExhaustedChannels закрывает каналы стадий, которые больше
// не могут эмитить: все входные каналы стадии закрыты и каждый
// join-способный ключ достиг терминального исхода.
//
// Закрытие — сигнал нисходящим потребителям: "tuple для невиденных
// ключей уже не появится" — так постоянное голодание отличимо
// от ожидания.
func (s *Scheduler) closeExhaustedChannels(state *RunState) {
	for _, stage := range s.graph.Stages {
		if !s.inputsClosed(stage) {
			continue
		}

		exhausted := true
		for _, key := range s.candidateKeys(stage) {
			if s.collectInputs(stage, key) == nil {
				continue // join никогда не станет полным: выше по графу падение
			}
			if !state.IsTerminal(stage.ID, key) {
				exhausted = false
				break
			}
		}

		if exhausted {
			for _, out := range stage.Outputs {
				s.graph.Channel(out.Channel).Close()
			}
		}
	}
}

// inputsClosed проверяет, закрыты ли все входные каналы стадии.
func (s *Scheduler) inputsClosed(stage *engine.StageDef) bool {
	for _, in := range stage.Inputs {
		if !s.graph.Channel(in.Channel).Closed() {
			return false
		}
	}
	return true
}

// closeAllChannels закрывает оставшиеся каналы по завершении цикла.
func (s *Scheduler) closeAllChannels() {
	for _, ch := range s.graph.Channels {
		ch.Close()
	}
}

// finalize подводит итог запуска: статус, метрики, событие.
func (s *Scheduler) finalize(ctx context.Context, run *domain.Run, rep *report.Report, state *RunState, logger *slog.Logger) {
	stalled := 0
	for _, res := range rep.Samples {
		if res.Status == domain.SampleStatusStalled {
			stalled++
		}
	}
	if stalled > 0 {
		logger.Error("run stalled",
			"stalled_samples", stalled,
			"error", ErrRunStalled,
		)
	}

	if stage, failed := state.RunLevelFailure(); failed {
		// Падение whole-run стадии не привязано ни к одному образцу,
		// но запуск оно проваливает.
		run.MarkFailed(fmt.Sprintf("run-level stage %s failed", stage))
		logger.Warn("run failed",
			"failed_stage", stage,
			"duration", run.Duration(),
		)
	} else if rep.AllSucceeded() {
		run.MarkSucceeded()
		logger.Info("run succeeded",
			"samples", len(rep.Samples),
			"duration", run.Duration(),
		)
	} else {
		run.MarkFailed(fmt.Sprintf("%d of %d samples failed", rep.Failed(), len(rep.Samples)))
		logger.Warn("run failed",
			"succeeded", rep.Succeeded(),
			"failed", rep.Failed(),
			"duration", run.Duration(),
		)
	}
	telemetry.RunsTotal.WithLabelValues(string(run.Status)).Inc()

	if s.events != nil {
		if err := s.events.RunFinished(ctx, run, rep); err != nil {
			logger.Warn("failed to publish run.finished event", "error", err)
		}
	}
}

// abort прерывает запуск: дожидается остановки выполняющихся
// процессов (контекст уже отменён, процессы убиты) и освобождает
// их ресурсы перед возвратом управления.
func (s *Scheduler) abort(ctx context.Context, state *RunState, logger *slog.Logger) (*report.Report, *domain.Run, error) {
	logger.Warn("aborting run", "running_tasks", s.running)

	for s.running > 0 {
		d := <-s.done
		s.availCPUs += d.task.CPUs
		s.running--
		telemetry.TasksRunning.Dec()
		telemetry.CPUSlotsInUse.Set(float64(s.cfg.CPUs - s.availCPUs))

		d.task.MarkFailed(ErrRunAborted.Error())
		state.MarkFailed(d.stage.ID, d.task.Sample, ErrRunAborted.Error())
	}

	run := state.Run
	run.MarkAborted(ctx.Err().Error())
	telemetry.RunsTotal.WithLabelValues(string(run.Status)).Inc()

	return nil, run, fmt.Errorf("%w: %v", ErrRunAborted, ctx.Err())
}
