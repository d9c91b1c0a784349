package domain

// SampleKey — уникальный идентификатор одного образца в рамках запуска.
//
// Вычисляется из общего префикса пары файлов чтений
// (например, "SAMPLE01" для SAMPLE01_R1_001.fastq.gz / SAMPLE01_R2_001.fastq.gz).
// Ключ стабилен и уникален на протяжении всего запуска.
type SampleKey string

// String возвращает строковое представление ключа.
func (k SampleKey) String() string {
	return string(k)
}

// Sample — один обнаруженный образец: пара файлов чтений.
type Sample struct {
	// Key — уникальный идентификатор образца.
	Key SampleKey `json:"key"`

	// R1 — путь к файлу прямых чтений.
	R1 string `json:"r1"`

	// R2 — путь к файлу обратных чтений.
	R2 string `json:"r2"`
}

// SampleStatus — итоговый статус образца в отчёте запуска.
type SampleStatus string

const (
	// SampleStatusSucceeded — образец прошёл все терминальные стадии своей ветки.
	SampleStatusSucceeded SampleStatus = "SUCCEEDED"

	// SampleStatusFailed — задача образца упала на одной из стадий;
	// последующие стадии для этого ключа не выполнялись.
	SampleStatusFailed SampleStatus = "FAILED"

	// SampleStatusStalled — образец не достиг терминальной стадии,
	// но ни одна его задача не падала (запуск остановился без прогресса).
	SampleStatusStalled SampleStatus = "STALLED"
)
