package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/Ampliflow/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writePair создаёт пару файлов чтений для образца.
func writePair(t *testing.T, dir, key string) {
	t.Helper()
	for _, suffix := range []string{"_R1_001.fastq.gz", "_R2_001.fastq.gz"} {
		if err := os.WriteFile(filepath.Join(dir, key+suffix), nil, 0o644); err != nil {
			t.Fatalf("write pair: %v", err)
		}
	}
}

func TestNew_InvalidCron(t *testing.T) {
	_, err := New(t.TempDir(), "not a cron", nil, discardLogger())
	if !errors.Is(err, ErrInvalidCronExpr) {
		t.Errorf("expected ErrInvalidCronExpr, got %v", err)
	}
}

func TestTick_LaunchesOnlyNewSamples(t *testing.T) {
	dir := t.TempDir()
	writePair(t, dir, "S1")

	var launches [][]domain.Sample
	launch := func(ctx context.Context, samples []domain.Sample) error {
		launches = append(launches, samples)
		return nil
	}

	w, err := New(dir, "*/5 * * * *", launch, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Первый тик видит S1
	w.tick(context.Background())
	if len(launches) != 1 || len(launches[0]) != 1 || launches[0][0].Key != "S1" {
		t.Fatalf("expected one launch with S1, got %v", launches)
	}

	// Повторный тик без новых файлов ничего не запускает
	w.tick(context.Background())
	if len(launches) != 1 {
		t.Fatalf("expected no new launches, got %d", len(launches))
	}

	// Новая пара — запуск только для неё
	writePair(t, dir, "S2")
	w.tick(context.Background())
	if len(launches) != 2 {
		t.Fatalf("expected a second launch, got %d", len(launches))
	}
	if len(launches[1]) != 1 || launches[1][0].Key != "S2" {
		t.Errorf("second launch should contain only S2, got %v", launches[1])
	}
}

func TestTick_EmptyDirIsQuiet(t *testing.T) {
	launched := false
	launch := func(ctx context.Context, samples []domain.Sample) error {
		launched = true
		return nil
	}

	w, err := New(t.TempDir(), "*/5 * * * *", launch, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.tick(context.Background())
	if launched {
		t.Error("empty directory should not trigger a launch")
	}
}

func TestTick_InconsistentDirSkipsTick(t *testing.T) {
	dir := t.TempDir()
	// Только R1: копирование R2 ещё не завершилось
	if err := os.WriteFile(filepath.Join(dir, "S1_R1_001.fastq.gz"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	launched := false
	launch := func(ctx context.Context, samples []domain.Sample) error {
		launched = true
		return nil
	}

	w, err := New(dir, "*/5 * * * *", launch, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.tick(context.Background())
	if launched {
		t.Error("unpaired read should defer the launch to a later tick")
	}

	// Пара доехала — следующий тик запускает
	if err := os.WriteFile(filepath.Join(dir, "S1_R2_001.fastq.gz"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w.tick(context.Background())
	if !launched {
		t.Error("completed pair should launch on the next tick")
	}
}
