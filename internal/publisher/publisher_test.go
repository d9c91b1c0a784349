package publisher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeArtifact создаёт файл с содержимым.
func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPublish_CopiesArtifacts(t *testing.T) {
	scratch := t.TempDir()
	results := t.TempDir()

	src := writeArtifact(t, scratch, "S1.consensus.fa", ">S1\nACGT\n")

	p := New(results, nil)
	published, err := p.Publish("S1", "consensus", []string{src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(published) != 1 {
		t.Fatalf("expected 1 published path, got %d", len(published))
	}

	// Имя файла сохранено, содержимое идентично
	got, err := os.ReadFile(filepath.Join(results, "S1.consensus.fa"))
	if err != nil {
		t.Fatalf("published file missing: %v", err)
	}
	if string(got) != ">S1\nACGT\n" {
		t.Errorf("published content differs: %q", got)
	}

	// Исходник не перемещён, а скопирован
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source artifact should remain: %v", err)
	}
}

func TestPublish_NameCollision(t *testing.T) {
	scratch := t.TempDir()
	results := t.TempDir()

	writeArtifact(t, results, "S1.consensus.fa", "already here")
	src := writeArtifact(t, scratch, "S1.consensus.fa", "new content")

	p := New(results, nil)
	published, err := p.Publish("S1", "consensus", []string{src})

	if !errors.Is(err, ErrNameCollision) {
		t.Errorf("expected ErrNameCollision, got %v", err)
	}
	if len(published) != 0 {
		t.Errorf("colliding artifact should not be listed as published: %v", published)
	}

	// Существующий файл не перезаписан
	got, _ := os.ReadFile(filepath.Join(results, "S1.consensus.fa"))
	if string(got) != "already here" {
		t.Errorf("existing artifact was overwritten: %q", got)
	}
}

func TestPublish_PartialSuccess(t *testing.T) {
	scratch := t.TempDir()
	results := t.TempDir()

	good := writeArtifact(t, scratch, "good.fa", "ok")
	missing := filepath.Join(scratch, "missing.fa")

	p := New(results, nil)
	published, err := p.Publish("S1", "consensus", []string{good, missing})

	// Частичный успех: одна копия удалась, одна — нет
	if err == nil {
		t.Error("expected an error for the missing artifact")
	}
	if len(published) != 1 || filepath.Base(published[0]) != "good.fa" {
		t.Errorf("expected good.fa to be published, got %v", published)
	}

	var perr *PublishError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PublishError, got %T", err)
	}
	if perr.Sample != "S1" || perr.Stage != "consensus" {
		t.Errorf("PublishError should name sample and stage, got %+v", perr)
	}
}

func TestPublish_CreatesResultsDir(t *testing.T) {
	scratch := t.TempDir()
	results := filepath.Join(t.TempDir(), "nested", "results")

	src := writeArtifact(t, scratch, "S1.fa", "x")

	p := New(results, nil)
	if _, err := p.Publish("S1", "consensus", []string{src}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(results, "S1.fa")); err != nil {
		t.Errorf("results dir was not created: %v", err)
	}
}
