package engine

import (
	"errors"
	"testing"
)

// chainDefs — линейный граф a → b → c поверх источника "src".
func chainDefs() []*StageDef {
	return []*StageDef{
		{
			ID: "a", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid", Glob: "*.mid"}},
		},
		{
			ID: "b", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "mid"}},
			Outputs: []OutputSlot{{Channel: "out", Glob: "*.out"}},
		},
		{
			ID: "c", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "out"}},
			Outputs: []OutputSlot{{Channel: "final", Glob: "*.fin", Publish: true}},
		},
	}
}

func chainSources() []SourceDef {
	return []SourceDef{{Channel: "src", Kind: SampleChannel}}
}

func TestBuild_Chain(t *testing.T) {
	g, err := Build(chainDefs(), chainSources(), BranchDirect, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Size() != 3 {
		t.Errorf("expected 3 stages, got %d", g.Size())
	}

	// Топологический порядок: a перед b перед c
	positions := make(map[string]int)
	for i, st := range g.Stages {
		positions[st.ID] = i
	}
	if positions["a"] > positions["b"] || positions["b"] > positions["c"] {
		t.Errorf("wrong topological order: %v", positions)
	}

	// Каналы созданы с правильной дисциплиной
	for _, name := range []string{"src", "mid", "out", "final"} {
		ch := g.Channel(name)
		if ch == nil {
			t.Fatalf("channel %s not created", name)
		}
		if ch.Kind != SampleChannel {
			t.Errorf("channel %s should be per-sample", name)
		}
	}

	// Производители и потребители
	if prod, _ := g.Producer("mid"); prod != "a" {
		t.Errorf("expected producer of mid to be a, got %q", prod)
	}
	if prod, _ := g.Producer("src"); prod != "" {
		t.Errorf("source channel should have empty producer, got %q", prod)
	}
	if cons := g.Consumers("mid"); len(cons) != 1 || cons[0] != "b" {
		t.Errorf("expected consumers of mid to be [b], got %v", cons)
	}

	// Единственная sink-стадия — c (её выход никто не потребляет)
	sinks := g.SinkStages()
	if len(sinks) != 1 || sinks[0].ID != "c" {
		t.Errorf("expected sink [c], got %v", sinks)
	}
}

func TestBuild_UnresolvedSlot(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "lonely", PerSample: true, CPUs: 1,
			Inputs: []InputSlot{{Channel: "nowhere"}},
		},
	}

	_, err := Build(defs, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrUnresolvedSlot) {
		t.Errorf("expected ErrUnresolvedSlot, got %v", err)
	}

	var gerr *GraphError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GraphError, got %T", err)
	}
	if gerr.StageID != "lonely" || gerr.Slot != "nowhere" {
		t.Errorf("GraphError should name stage and slot, got %+v", gerr)
	}
}

func TestBuild_DuplicateProducer(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "a", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
		{
			ID: "b", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
	}

	_, err := Build(defs, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrDuplicateProducer) {
		t.Errorf("expected ErrDuplicateProducer, got %v", err)
	}
}

func TestBuild_DuplicateStageID(t *testing.T) {
	defs := []*StageDef{
		{ID: "a", PerSample: true, CPUs: 1, Inputs: []InputSlot{{Channel: "src"}}},
		{ID: "a", PerSample: true, CPUs: 1, Inputs: []InputSlot{{Channel: "src"}}},
	}

	_, err := Build(defs, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrDuplicateStageID) {
		t.Errorf("expected ErrDuplicateStageID, got %v", err)
	}
}

func TestBuild_Cycle(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "a", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "loop"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
		{
			ID: "b", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "mid"}},
			Outputs: []OutputSlot{{Channel: "loop"}},
		},
	}

	_, err := Build(defs, nil, BranchDirect, 4)
	if !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("expected ErrCyclicGraph, got %v", err)
	}
}

func TestBuild_BranchFilter(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "common", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
		{
			ID: "trim-only", PerSample: true, CPUs: 1,
			Branches: []Branch{BranchTrim},
			Inputs:   []InputSlot{{Channel: "mid"}},
			Outputs:  []OutputSlot{{Channel: "trimmed"}},
		},
	}

	// В ветке direct стадия trim-only отсутствует вместе со своим каналом
	g, err := Build(defs, chainSources(), BranchDirect, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Size() != 1 {
		t.Errorf("expected 1 stage in direct branch, got %d", g.Size())
	}
	if g.Stage("trim-only") != nil {
		t.Error("trim-only stage should be excluded from direct branch")
	}
	if g.Channel("trimmed") != nil {
		t.Error("channel of excluded stage should not exist")
	}

	// В ветке trim присутствуют обе
	g, err = Build(defs, chainSources(), BranchTrim, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Size() != 2 {
		t.Errorf("expected 2 stages in trim branch, got %d", g.Size())
	}
}

func TestBuild_SameIDInExclusiveBranches(t *testing.T) {
	// Одинаковый ID допустим, если стадии лежат в разных ветках:
	// после отбора ветки остаётся ровно одна.
	defs := []*StageDef{
		{
			ID: "consensus", PerSample: true, CPUs: 1,
			Branches: []Branch{BranchTrim},
			Inputs:   []InputSlot{{Channel: "src"}},
			Outputs:  []OutputSlot{{Channel: "fa"}},
		},
		{
			ID: "consensus", PerSample: true, CPUs: 1,
			Branches: []Branch{BranchDirect},
			Inputs:   []InputSlot{{Channel: "src"}},
			Outputs:  []OutputSlot{{Channel: "fa"}},
		},
	}

	for _, branch := range []Branch{BranchTrim, BranchDirect} {
		g, err := Build(defs, chainSources(), branch, 4)
		if err != nil {
			t.Fatalf("branch %s: unexpected error: %v", branch, err)
		}
		if g.Size() != 1 {
			t.Errorf("branch %s: expected 1 stage, got %d", branch, g.Size())
		}
	}
}

func TestBuild_CPUsExceedBudget(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "heavy", PerSample: true, CPUs: 8,
			Inputs: []InputSlot{{Channel: "src"}},
		},
	}

	_, err := Build(defs, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrCPUsExceedBudget) {
		t.Errorf("expected ErrCPUsExceedBudget, got %v", err)
	}
}

func TestBuild_WholeRunSampleInput(t *testing.T) {
	// Whole-run стадия не может потреблять per-sample канал:
	// у её единственного task нет ключа образца для join
	defs := []*StageDef{
		{
			ID: "a", PerSample: true, CPUs: 1,
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
		{
			ID: "tally", PerSample: false, CPUs: 1,
			Inputs: []InputSlot{{Channel: "mid"}},
		},
	}

	_, err := Build(defs, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrWholeRunSampleInput) {
		t.Errorf("expected ErrWholeRunSampleInput, got %v", err)
	}

	var gerr *GraphError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GraphError, got %T", err)
	}
	if gerr.StageID != "tally" || gerr.Slot != "mid" {
		t.Errorf("GraphError should name stage and slot, got %+v", gerr)
	}
}

func TestBuild_DoesNotMutateDefs(t *testing.T) {
	defs := []*StageDef{
		{
			ID: "a", PerSample: true, // CPUs не задан: применяется умолчание
			Inputs:  []InputSlot{{Channel: "src"}},
			Outputs: []OutputSlot{{Channel: "mid"}},
		},
	}

	g, err := Build(defs, chainSources(), BranchDirect, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Stage("a").CPUs != 1 {
		t.Errorf("graph stage should get the default of 1 CPU, got %d", g.Stage("a").CPUs)
	}
	if defs[0].CPUs != 0 {
		t.Errorf("caller's definition was mutated: CPUs = %d", defs[0].CPUs)
	}
}

func TestBuild_NoStages(t *testing.T) {
	_, err := Build(nil, chainSources(), BranchDirect, 4)
	if !errors.Is(err, ErrNoStages) {
		t.Errorf("expected ErrNoStages, got %v", err)
	}
}

func TestResolveBranch(t *testing.T) {
	if ResolveBranch(true) != BranchTrim {
		t.Error("primer scheme present should select the trim branch")
	}
	if ResolveBranch(false) != BranchDirect {
		t.Error("no primer scheme should select the direct branch")
	}
}
