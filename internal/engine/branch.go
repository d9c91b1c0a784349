package engine

// Branch — условная ветка графа.
//
// Ветка выбирается ровно один раз, при построении графа, из
// ExecutionContext и терминальна для всего запуска: решение никогда
// не перевычисляется внутри per-sample цикла выполнения.
type Branch string

const (
	// BranchTrim — картированные чтения проходят стадию обрезки
	// праймеров перед вызовом консенсуса. Включается, когда
	// сконфигурирована таблица координат праймеров.
	BranchTrim Branch = "trim"

	// BranchDirect — чтения идут в консенсус напрямую, без обрезки.
	BranchDirect Branch = "direct"
)

// String возвращает имя ветки.
func (b Branch) String() string {
	return string(b)
}

// ResolveBranch выбирает ветку графа из конфигурации запуска.
// Чистая функция: одинаковая конфигурация всегда даёт одну и ту же ветку.
func ResolveBranch(hasPrimerScheme bool) Branch {
	if hasPrimerScheme {
		return BranchTrim
	}
	return BranchDirect
}
