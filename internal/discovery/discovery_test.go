package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// chdir переводит тест в dir и восстанавливает прежний каталог по завершении.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

// writeFiles создаёт пустые файлы в каталоге.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestScan_Pairs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"SAMPLE02_R1_001.fastq.gz",
		"SAMPLE02_R2_001.fastq.gz",
		"SAMPLE01_R1_001.fastq.gz",
		"SAMPLE01_R2_001.fastq.gz",
		"notes.txt", // не файл чтений, игнорируется
	)

	samples, err := Scan(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}

	// Отсортированы по ключу
	if samples[0].Key != "SAMPLE01" || samples[1].Key != "SAMPLE02" {
		t.Errorf("unexpected keys: %s, %s", samples[0].Key, samples[1].Key)
	}

	if filepath.Base(samples[0].R1) != "SAMPLE01_R1_001.fastq.gz" {
		t.Errorf("unexpected R1: %s", samples[0].R1)
	}
	if filepath.Base(samples[0].R2) != "SAMPLE01_R2_001.fastq.gz" {
		t.Errorf("unexpected R2: %s", samples[0].R2)
	}
}

func TestScan_RelativeDirYieldsAbsolutePaths(t *testing.T) {
	// Пути чтений уходят в команды tasks, выполняемые в scratch-каталогах
	chdir(t, t.TempDir())
	if err := os.MkdirAll("reads", 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, "reads",
		"SAMPLE01_R1_001.fastq.gz",
		"SAMPLE01_R2_001.fastq.gz",
	)

	samples, err := Scan("reads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filepath.IsAbs(samples[0].R1) || !filepath.IsAbs(samples[0].R2) {
		t.Errorf("read paths should be absolute, got %s / %s", samples[0].R1, samples[0].R2)
	}
}

func TestScan_UnpairedR1(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"GOOD_R1_001.fastq.gz",
		"GOOD_R2_001.fastq.gz",
		"LONELY_R1_001.fastq.gz",
	)

	// Непарный файл — фатальная ошибка, молчаливого выбрасывания нет
	_, err := Scan(dir)
	if !errors.Is(err, ErrUnpairedRead) {
		t.Errorf("expected ErrUnpairedRead, got %v", err)
	}
}

func TestScan_UnpairedR2(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "LONELY_R2_001.fastq.gz")

	_, err := Scan(dir)
	if !errors.Is(err, ErrUnpairedRead) {
		t.Errorf("expected ErrUnpairedRead, got %v", err)
	}
}

func TestScan_Empty(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "README.md")

	_, err := Scan(dir)
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSplitPair(t *testing.T) {
	key, isR1 := splitPair("SAMPLE01_R1_001.fastq.gz")
	if key != "SAMPLE01" || !isR1 {
		t.Errorf("expected (SAMPLE01, true), got (%s, %v)", key, isR1)
	}

	key, isR1 = splitPair("SAMPLE01_R2_001.fastq.gz")
	if key != "SAMPLE01" || isR1 {
		t.Errorf("expected (SAMPLE01, false), got (%s, %v)", key, isR1)
	}

	if key, _ := splitPair("unrelated.txt"); key != "" {
		t.Errorf("expected empty key for non-read file, got %s", key)
	}
}
