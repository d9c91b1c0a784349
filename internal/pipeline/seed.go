package pipeline

import (
	"fmt"

	"github.com/shaiso/Ampliflow/internal/config"
	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/engine"
	"github.com/shaiso/Ampliflow/internal/telemetry"
)

// Seed возвращает функцию наполнения каналов-источников графа.
//
// Обнаружение образцов завершается до старта запуска, поэтому каналы
// закрываются сразу после наполнения: новых tuple от источников не будет.
func Seed(ctx *config.ExecutionContext) func(g *engine.Graph, samples []domain.Sample) error {
	return func(g *engine.Graph, samples []domain.Sample) error {
		raw := g.Channel(ChannelRawReads)
		if raw == nil {
			return fmt.Errorf("source channel %q is not in the graph", ChannelRawReads)
		}
		for _, sample := range samples {
			err := raw.Emit(engine.Tuple{Key: sample.Key, Payload: []string{sample.R1, sample.R2}})
			if err != nil {
				return fmt.Errorf("seed %q: %w", ChannelRawReads, err)
			}
		}
		raw.Close()
		telemetry.SamplesDiscovered.Add(float64(len(samples)))

		ref := g.Channel(ChannelReference)
		if ref == nil {
			return fmt.Errorf("source channel %q is not in the graph", ChannelReference)
		}
		if err := ref.Emit(engine.Tuple{Payload: []string{ctx.Reference}}); err != nil {
			return fmt.Errorf("seed %q: %w", ChannelReference, err)
		}
		ref.Close()

		if bed := g.Channel(ChannelPrimerBed); bed != nil {
			if err := bed.Emit(engine.Tuple{Payload: []string{ctx.PrimerBed}}); err != nil {
				return fmt.Errorf("seed %q: %w", ChannelPrimerBed, err)
			}
			bed.Close()
		}

		return nil
	}
}
