package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Ampliflow/internal/domain"
)

func TestChannel_SampleEmitGet(t *testing.T) {
	ch := NewChannel("reads", SampleChannel)

	err := ch.Emit(Tuple{Key: "S1", Payload: []string{"a.fq", "b.fq"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := ch.Get("S1")
	if !ok {
		t.Fatal("expected tuple for S1")
	}
	if len(got.Payload) != 2 || got.Payload[0] != "a.fq" {
		t.Errorf("unexpected payload: %v", got.Payload)
	}

	// Ключ без tuple
	if _, ok := ch.Get("S2"); ok {
		t.Error("S2 should have no tuple")
	}
}

func TestChannel_DuplicateSampleKey(t *testing.T) {
	ch := NewChannel("reads", SampleChannel)

	if err := ch.Emit(Tuple{Key: "S1", Payload: []string{"a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ch.Emit(Tuple{Key: "S1", Payload: []string{"b"}})
	if !errors.Is(err, ErrDuplicateSample) {
		t.Errorf("expected ErrDuplicateSample, got %v", err)
	}

	// Первый tuple не перезаписан
	got, _ := ch.Get("S1")
	if got.Payload[0] != "a" {
		t.Errorf("original tuple was overwritten: %v", got.Payload)
	}
}

func TestChannel_ValueBroadcast(t *testing.T) {
	ch := NewChannel("ref", ValueChannel)

	if err := ch.Emit(Tuple{Payload: []string{"ref.fa"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Value-канал отдаёт tuple для любого ключа
	for _, key := range []domain.SampleKey{"S1", "S2", ""} {
		got, ok := ch.Get(key)
		if !ok {
			t.Fatalf("expected broadcast tuple for key %q", key)
		}
		if got.Payload[0] != "ref.fa" {
			t.Errorf("unexpected payload for key %q: %v", key, got.Payload)
		}
	}
}

func TestChannel_SecondValueRejected(t *testing.T) {
	ch := NewChannel("ref", ValueChannel)

	if err := ch.Emit(Tuple{Payload: []string{"one"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ch.Emit(Tuple{Payload: []string{"two"}})
	if !errors.Is(err, ErrValueAlreadySet) {
		t.Errorf("expected ErrValueAlreadySet, got %v", err)
	}
}

func TestChannel_KindMismatch(t *testing.T) {
	// Ключ в value-канале
	ref := NewChannel("ref", ValueChannel)
	err := ref.Emit(Tuple{Key: "S1", Payload: []string{"x"}})
	if !errors.Is(err, ErrValueOnSampleChannel) {
		t.Errorf("expected ErrValueOnSampleChannel for keyed tuple, got %v", err)
	}

	// Tuple без ключа в per-sample канале
	reads := NewChannel("reads", SampleChannel)
	err = reads.Emit(Tuple{Payload: []string{"x"}})
	if !errors.Is(err, ErrValueOnSampleChannel) {
		t.Errorf("expected ErrValueOnSampleChannel for keyless tuple, got %v", err)
	}
}

func TestChannel_EmitAfterClose(t *testing.T) {
	ch := NewChannel("reads", SampleChannel)
	ch.Close()

	err := ch.Emit(Tuple{Key: "S1", Payload: []string{"a"}})
	if !errors.Is(err, ErrChannelClosed) {
		t.Errorf("expected ErrChannelClosed, got %v", err)
	}

	if !ch.Closed() {
		t.Error("channel should report closed")
	}

	// Повторное закрытие безопасно
	ch.Close()
}

func TestChannel_KeysArrivalOrder(t *testing.T) {
	ch := NewChannel("reads", SampleChannel)

	for _, key := range []domain.SampleKey{"S3", "S1", "S2"} {
		if err := ch.Emit(Tuple{Key: key, Payload: []string{"x"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	keys := ch.Keys()
	want := []domain.SampleKey{"S3", "S1", "S2"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], keys[i])
		}
	}

	if ch.Len() != 3 {
		t.Errorf("expected Len 3, got %d", ch.Len())
	}
}
