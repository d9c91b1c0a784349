package engine

import "errors"

// Ошибки построения графа. Все они фатальны (SetupError):
// запуск прерывается до создания первого task.
var (
	// ErrNoStages — для выбранной ветки не осталось ни одной стадии.
	ErrNoStages = errors.New("graph has no stages")

	// ErrEmptyStageID — стадия без ID.
	ErrEmptyStageID = errors.New("stage has empty ID")

	// ErrDuplicateStageID — несколько стадий с одинаковым ID.
	ErrDuplicateStageID = errors.New("duplicate stage ID")

	// ErrUnresolvedSlot — входной слот ссылается на канал,
	// который не производит ни одна стадия и ни один источник.
	ErrUnresolvedSlot = errors.New("input slot resolves to no producer")

	// ErrDuplicateProducer — два выходных слота объявляют один канал.
	// Неявное слияние fan-in запрещено.
	ErrDuplicateProducer = errors.New("channel declared by two producers")

	// ErrCyclicGraph — в графе стадий обнаружен цикл.
	ErrCyclicGraph = errors.New("cyclic stage graph")

	// ErrCPUsExceedBudget — стадия запрашивает больше CPU,
	// чем весь глобальный бюджет: такой task никогда не запустится.
	ErrCPUsExceedBudget = errors.New("stage cpu request exceeds global budget")

	// ErrWholeRunSampleInput — whole-run стадия потребляет per-sample
	// канал: join task'а без ключа образца не определён.
	ErrWholeRunSampleInput = errors.New("whole-run stage consumes per-sample channel")
)

// Ошибки контракта каналов.
var (
	// ErrDuplicateSample — повторный emit tuple с тем же ключом образца
	// в per-sample канал. Нарушение контракта производителя.
	ErrDuplicateSample = errors.New("duplicate sample key on channel")

	// ErrValueAlreadySet — повторный emit в value-канал.
	ErrValueAlreadySet = errors.New("value channel already holds a tuple")

	// ErrChannelClosed — emit в закрытый канал.
	ErrChannelClosed = errors.New("channel is closed")

	// ErrValueOnSampleChannel — tuple без ключа в per-sample канале
	// или tuple с ключом в value-канале.
	ErrValueOnSampleChannel = errors.New("tuple key does not match channel kind")
)

// Ошибки рендеринга шаблонов команд.
var (
	// ErrTemplateParse — шаблон команды не парсится.
	ErrTemplateParse = errors.New("command template parse failed")

	// ErrTemplateRender — ошибка подстановки значений в шаблон.
	ErrTemplateRender = errors.New("command template render failed")
)

// GraphError — ошибка построения графа с контекстом.
type GraphError struct {
	StageID string // ID стадии, где произошла ошибка
	Slot    string // имя канала слота, вызвавшего ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *GraphError) Error() string {
	if e.StageID != "" {
		return "stage " + e.StageID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewGraphError создаёт новую ошибку построения графа.
func NewGraphError(stageID, slot, message string, err error) *GraphError {
	return &GraphError{
		StageID: stageID,
		Slot:    slot,
		Message: message,
		Err:     err,
	}
}
