package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/shaiso/Ampliflow/internal/config"
	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/engine"
	"github.com/shaiso/Ampliflow/internal/telemetry"
)

// Имена файлов диагностики в scratch-каталоге task.
// stdout/stderr внешнего процесса захватываются только для
// диагностики и не парсятся, кроме кода выхода.
const (
	stdoutFile = ".command.out"
	stderrFile = ".command.err"
)

// Runner выполняет внешнюю команду одного task.
//
// Каждый task получает выделенный scratch-каталог; все побочные
// эффекты команды ограничены им. Цепочка пайпов внутри команды —
// один вызов /bin/sh, один код выхода.
type Runner struct {
	cfg    *config.ExecutionContext
	logger *slog.Logger
}

// New создаёт новый Runner.
func New(cfg *config.ExecutionContext, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Execute выполняет task и возвращает выходные артефакты по слотам.
//
// Успех — это код выхода 0 И хотя бы одно совпадение каждого
// объявленного выходного glob-шаблона. Любой другой исход — ошибка;
// при ошибке ничего не эмитится и нисходящие стадии этого образца
// навсегда остаются без join.
func (r *Runner) Execute(ctx context.Context, task *domain.Task, stage *engine.StageDef) (map[string][]string, error) {
	logger := telemetry.WithTaskID(telemetry.WithStage(r.logger, stage.ID), task.ID.String())

	workDir, err := r.makeScratchDir(task, stage)
	if err != nil {
		return nil, err
	}
	task.WorkDir = workDir

	script, err := engine.RenderCommand(stage.Command, &engine.TemplateData{
		Sample:   task.Sample.String(),
		CPUs:     task.CPUs,
		Amplicon: r.cfg.Amplicon,
		In:       task.Inputs,
	})
	if err != nil {
		return nil, err
	}

	if stage.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(stage.TimeoutSec)*time.Second)
		defer cancel()
	}

	logger.Debug("executing command", "sample", task.Sample, "work_dir", workDir)

	exitCode, err := r.runCommand(ctx, script, workDir, stage)
	task.ExitCode = exitCode
	if err != nil {
		return nil, err
	}

	outputs, err := r.resolveOutputs(workDir, stage)
	if err != nil {
		return nil, err
	}

	logger.Debug("command succeeded", "sample", task.Sample)
	return outputs, nil
}

// makeScratchDir создаёт scratch-каталог task:
// <scratch>/<run-id>/<stage>/<sample>-<task-id>.
func (r *Runner) makeScratchDir(task *domain.Task, stage *engine.StageDef) (string, error) {
	name := task.ID.String()[:8]
	if task.Sample != "" {
		name = task.Sample.String() + "-" + name
	}
	dir := filepath.Join(r.cfg.ScratchDir, task.RunID.String(), stage.ID, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrScratchDir, err)
	}
	// Пути артефактов попадают в команды нисходящих стадий, которые
	// выполняются в других каталогах: относительный scratch там
	// разрешился бы в чужое место.
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScratchDir, err)
	}
	return abs, nil
}

// runCommand запускает /bin/sh -c script в scratch-каталоге.
// Возвращает код выхода процесса.
func (r *Runner) runCommand(ctx context.Context, script, workDir string, stage *engine.StageDef) (int, error) {
	stdout, err := os.Create(filepath.Join(workDir, stdoutFile))
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrScratchDir, err)
	}
	defer stdout.Close()

	stderr, err := os.Create(filepath.Join(workDir, stderrFile))
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrScratchDir, err)
	}
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", script)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Декларативные подсказки для внешнего супервизора процессов;
	// сам планировщик их не форсирует.
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("AMPLIFLOW_THREADS=%d", stage.CPUs),
		fmt.Sprintf("AMPLIFLOW_MEM_GB=%d", stage.MemoryGB),
	)

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return exitErr.ExitCode(), fmt.Errorf("%w: %v", ErrCommandFailed, ctxErr)
		}
		return exitErr.ExitCode(), fmt.Errorf("%w: exit status %d", ErrCommandFailed, exitErr.ExitCode())
	}
	return -1, fmt.Errorf("%w: %v", ErrCommandFailed, err)
}

// resolveOutputs разрешает объявленные glob-шаблоны выходных слотов
// после выхода процесса. Нулевое совпадение любого слота — провал
// task, даже при коде выхода 0.
func (r *Runner) resolveOutputs(workDir string, stage *engine.StageDef) (map[string][]string, error) {
	outputs := make(map[string][]string, len(stage.Outputs))

	for _, out := range stage.Outputs {
		matches, err := filepath.Glob(filepath.Join(workDir, out.Glob))
		if err != nil {
			return nil, fmt.Errorf("resolve output glob %q: %w", out.Glob, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: slot %s glob %q matched nothing", ErrMissingOutput, out.Channel, out.Glob)
		}
		sort.Strings(matches)
		outputs[out.Channel] = matches
	}

	return outputs, nil
}
