package report

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Ampliflow/internal/domain"
)

func TestReport_AddKeepsSorted(t *testing.T) {
	rep := &Report{}
	for _, key := range []domain.SampleKey{"S3", "S1", "S2"} {
		rep.Add(SampleResult{Key: key, Status: domain.SampleStatusSucceeded})
	}

	for i, want := range []domain.SampleKey{"S1", "S2", "S3"} {
		if rep.Samples[i].Key != want {
			t.Errorf("position %d: expected %s, got %s", i, want, rep.Samples[i].Key)
		}
	}
}

func TestReport_Counts(t *testing.T) {
	rep := &Report{}
	rep.Add(SampleResult{Key: "S1", Status: domain.SampleStatusSucceeded})
	rep.Add(SampleResult{Key: "S2", Status: domain.SampleStatusFailed})
	rep.Add(SampleResult{Key: "S3", Status: domain.SampleStatusStalled})

	if rep.Succeeded() != 1 {
		t.Errorf("expected 1 succeeded, got %d", rep.Succeeded())
	}
	// Остановленные считаются неуспешными
	if rep.Failed() != 2 {
		t.Errorf("expected 2 failed, got %d", rep.Failed())
	}
	if rep.AllSucceeded() {
		t.Error("AllSucceeded should be false")
	}
	if rep.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", rep.ExitCode())
	}
}

func TestReport_ExitCodeAllSucceeded(t *testing.T) {
	rep := &Report{}
	rep.Add(SampleResult{Key: "S1", Status: domain.SampleStatusSucceeded})

	if rep.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", rep.ExitCode())
	}
}

func TestReport_Write(t *testing.T) {
	rep := &Report{RunID: uuid.New(), Branch: "trim"}
	rep.Add(SampleResult{
		Key:           "S1",
		Status:        domain.SampleStatusSucceeded,
		TerminalStage: "extract",
		Published:     []string{"/results/S1.consensus.fa"},
	})
	rep.Add(SampleResult{
		Key:         "S2",
		Status:      domain.SampleStatusFailed,
		FailedStage: "map",
		Error:       "exit status 1",
	})

	var buf strings.Builder
	if err := rep.Write(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}

	if !strings.Contains(lines[0], "sample=S1 status=SUCCEEDED terminal_stage=extract") {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[0], "published=/results/S1.consensus.fa") {
		t.Errorf("published artifacts missing: %s", lines[0])
	}
	if !strings.Contains(lines[1], "sample=S2 status=FAILED failed_stage=map") {
		t.Errorf("unexpected second line: %s", lines[1])
	}
	if !strings.Contains(lines[2], "branch=trim samples=2 succeeded=1 failed=1") {
		t.Errorf("unexpected summary: %s", lines[2])
	}
}
