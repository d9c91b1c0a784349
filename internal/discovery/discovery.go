package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shaiso/Ampliflow/internal/domain"
)

// Маркеры парной конвенции именования Illumina.
const (
	r1Marker = "_R1_001"
	r2Marker = "_R2_001"
)

// Scan сканирует каталог на пары файлов чтений.
//
// Файлы сопоставляются по конвенции <prefix>_R1_001.* / <prefix>_R2_001.*;
// общий префикс становится ключом образца. Непарный файл — фатальная
// ошибка настройки: молчаливое выбрасывание одиночек запрещено.
//
// Возвращаемый список отсортирован по ключу; каждый ключ уникален.
func Scan(dir string) ([]domain.Sample, error) {
	// Пути чтений уходят в команды tasks, выполняемые в scratch-каталогах,
	// и потому обязаны быть абсолютными.
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve input directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	r1 := make(map[string]string) // ключ → путь R1
	r2 := make(map[string]string) // ключ → путь R2

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		key, isR1 := splitPair(name)
		if key == "" {
			continue // не файл чтений
		}

		path := filepath.Join(dir, name)
		if isR1 {
			if _, dup := r1[key]; dup {
				return nil, fmt.Errorf("%w: second R1 file for sample %s", ErrDuplicateSample, key)
			}
			r1[key] = path
		} else {
			if _, dup := r2[key]; dup {
				return nil, fmt.Errorf("%w: second R2 file for sample %s", ErrDuplicateSample, key)
			}
			r2[key] = path
		}
	}

	// Каждый R1 обязан иметь пару, и наоборот
	for key := range r1 {
		if _, ok := r2[key]; !ok {
			return nil, fmt.Errorf("%w: sample %s has R1 but no R2", ErrUnpairedRead, key)
		}
	}
	for key := range r2 {
		if _, ok := r1[key]; !ok {
			return nil, fmt.Errorf("%w: sample %s has R2 but no R1", ErrUnpairedRead, key)
		}
	}

	if len(r1) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, dir)
	}

	samples := make([]domain.Sample, 0, len(r1))
	for key, path := range r1 {
		samples = append(samples, domain.Sample{
			Key: domain.SampleKey(key),
			R1:  path,
			R2:  r2[key],
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Key < samples[j].Key })

	return samples, nil
}

// splitPair извлекает ключ образца из имени файла.
// Возвращает пустой ключ, если имя не следует парной конвенции.
func splitPair(name string) (key string, isR1 bool) {
	if i := strings.Index(name, r1Marker); i > 0 {
		return name[:i], true
	}
	if i := strings.Index(name, r2Marker); i > 0 {
		return name[:i], false
	}
	return "", false
}
