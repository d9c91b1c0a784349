package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderCommand(t *testing.T) {
	data := &TemplateData{
		Sample:   "S1",
		CPUs:     3,
		Amplicon: "ORF1ab",
		In: map[string][]string{
			"reads.raw": {"S1_R1.fastq.gz", "S1_R2.fastq.gz"},
			"ref.fasta": {"ref.fa"},
		},
	}

	got, err := RenderCommand(
		`map -t {{ .CPUs }} {{ in "ref.fasta" 0 }} {{ in "reads.raw" 0 }} {{ in "reads.raw" 1 }} -o {{ .Sample }}.bam`,
		data,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "map -t 3 ref.fa S1_R1.fastq.gz S1_R2.fastq.gz -o S1.bam"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderCommand_All(t *testing.T) {
	data := &TemplateData{
		In: map[string][]string{"bams": {"a.bam", "b.bam"}},
	}

	got, err := RenderCommand(`merge {{ all "bams" }}`, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "merge a.bam b.bam" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRenderCommand_MissingSlot(t *testing.T) {
	data := &TemplateData{In: map[string][]string{}}

	// Дыра в команде — ошибка рендеринга, а не пустая подстановка
	_, err := RenderCommand(`cat {{ in "nowhere" 0 }}`, data)
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("error should name the missing slot: %v", err)
	}
}

func TestRenderCommand_IndexOutOfRange(t *testing.T) {
	data := &TemplateData{In: map[string][]string{"reads": {"only.fq"}}}

	_, err := RenderCommand(`cat {{ in "reads" 1 }}`, data)
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}

func TestRenderCommand_ParseError(t *testing.T) {
	_, err := RenderCommand(`{{ in "reads" `, &TemplateData{})
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}
