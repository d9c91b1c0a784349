package discovery

import "errors"

// Ошибки обнаружения образцов. Все они фатальны (SetupError).
var (
	// ErrUnpairedRead — файл чтений без пары.
	ErrUnpairedRead = errors.New("unpaired read file")

	// ErrDuplicateSample — два файла претендуют на один ключ образца.
	ErrDuplicateSample = errors.New("duplicate sample file")

	// ErrNoSamples — в каталоге не найдено ни одной пары.
	ErrNoSamples = errors.New("no sample pairs found")
)
