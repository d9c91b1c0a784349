package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Движки картирования чтений. Переключение движка меняет только
// шаблон команды стадии map, топология графа не меняется.
const (
	EngineMinimap2 = "minimap2"
	EngineBWA      = "bwa"
)

// ExecutionContext — конфигурация запуска, разрешаемая один раз при старте.
//
// После Load контекст неизменяем: построитель графа, раннер и publisher
// получают его по ссылке и никогда не мутируют. Наличие PrimerBed
// определяет условную ветку графа (trim / direct).
type ExecutionContext struct {
	// InputDir — каталог с парными файлами чтений.
	InputDir string `yaml:"input_dir"`

	// ResultsDir — каталог для публикуемых артефактов.
	ResultsDir string `yaml:"results_dir"`

	// ScratchDir — корень scratch-каталогов tasks.
	// По умолчанию: <results_dir>/work.
	ScratchDir string `yaml:"scratch_dir"`

	// Reference — путь к референсной последовательности (FASTA). Обязателен.
	Reference string `yaml:"reference"`

	// PrimerBed — путь к BED-таблице координат праймеров.
	// Опционален; его наличие включает ветку trim.
	PrimerBed string `yaml:"primer_bed"`

	// Amplicon — имя целевого ампликона для стадии extract.
	Amplicon string `yaml:"amplicon"`

	// CPUs — глобальный бюджет CPU-слотов планировщика.
	CPUs int `yaml:"cpus"`

	// Engine — движок картирования: "minimap2" (по умолчанию) или "bwa".
	Engine string `yaml:"engine"`

	// DBURL — DSN ledger-базы. Опционален; пустое значение
	// отключает запись результатов запуска в Postgres.
	DBURL string `yaml:"db_url"`

	// AMQPURL — URL брокера событий. Опционален; пустое значение
	// отключает публикацию событий жизненного цикла.
	AMQPURL string `yaml:"amqp_url"`
}

// Load читает профиль запуска из YAML-файла и накладывает
// переменные окружения. Путь может быть пустым — тогда профиль
// строится только из окружения и значений по умолчанию.
//
// Валидация выполняется отдельно (Validate), чтобы CLI мог
// дополнить профиль флагами до проверки.
func Load(path string) (*ExecutionContext, error) {
	ctx := &ExecutionContext{
		Engine: EngineMinimap2,
		CPUs:   4,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(data, ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}

	ctx.applyEnv()
	return ctx, nil
}

// applyEnv накладывает переменные окружения поверх профиля.
// Окружение имеет приоритет над файлом.
func (c *ExecutionContext) applyEnv() {
	if v := os.Getenv("AMPLIFLOW_INPUT_DIR"); v != "" {
		c.InputDir = v
	}
	if v := os.Getenv("AMPLIFLOW_RESULTS_DIR"); v != "" {
		c.ResultsDir = v
	}
	if v := os.Getenv("AMPLIFLOW_REFERENCE"); v != "" {
		c.Reference = v
	}
	if v := os.Getenv("AMPLIFLOW_PRIMER_BED"); v != "" {
		c.PrimerBed = v
	}
	if v := os.Getenv("AMPLIFLOW_AMPLICON"); v != "" {
		c.Amplicon = v
	}
	if v := os.Getenv("AMPLIFLOW_ENGINE"); v != "" {
		c.Engine = v
	}
	if v := os.Getenv("AMPLIFLOW_CPUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CPUs = n
		}
	}
	if v := os.Getenv("AMPLIFLOW_DB_URL"); v != "" {
		c.DBURL = v
	}
	if v := os.Getenv("AMPLIFLOW_AMQP_URL"); v != "" {
		c.AMQPURL = v
	}
}

// Validate проверяет полноту и согласованность контекста.
// Любая ошибка здесь — SetupError: запуск прерывается до планирования.
func (c *ExecutionContext) Validate() error {
	if c.InputDir == "" {
		return ErrMissingInputDir
	}
	if c.ResultsDir == "" {
		return ErrMissingResultsDir
	}
	if c.Reference == "" {
		return ErrMissingReference
	}
	if _, err := os.Stat(c.Reference); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingReference, c.Reference)
	}
	if c.PrimerBed != "" {
		if _, err := os.Stat(c.PrimerBed); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingPrimerBed, c.PrimerBed)
		}
	}
	if c.CPUs <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCPUs, c.CPUs)
	}
	if c.Engine != EngineMinimap2 && c.Engine != EngineBWA {
		return fmt.Errorf("%w: %s", ErrUnknownEngine, c.Engine)
	}
	if c.ScratchDir == "" {
		c.ScratchDir = filepath.Join(c.ResultsDir, "work")
	}
	return c.absolutize()
}

// absolutize переводит все настроенные пути в абсолютные.
//
// Команды tasks выполняются в собственных scratch-каталогах:
// путь относительно CWD оркестратора там разрешается в другое место,
// поэтому пути фиксируются до создания первого task.
func (c *ExecutionContext) absolutize() error {
	for _, p := range []*string{&c.InputDir, &c.ResultsDir, &c.ScratchDir, &c.Reference, &c.PrimerBed} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve absolute path %q: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// HasPrimerScheme возвращает true, если сконфигурирована
// таблица координат праймеров.
func (c *ExecutionContext) HasPrimerScheme() bool {
	return c.PrimerBed != ""
}
