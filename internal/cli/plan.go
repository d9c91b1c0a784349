package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Ampliflow/internal/engine"
	"github.com/shaiso/Ampliflow/internal/pipeline"
)

// NewPlanCmd создаёт команду печати разрешённого графа без выполнения.
func NewPlanCmd(logger *slog.Logger) *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the pipeline graph and print it without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			graph, err := pipeline.Build(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "branch=%s engine=%s cpu_budget=%d stages=%d\n",
				graph.Branch, cfg.Engine, cfg.CPUs, graph.Size())

			for i, stage := range graph.Stages {
				fmt.Fprintf(out, "%d. %-12s cpus=%d in=[%s] out=[%s]\n",
					i+1, stage.ID, stage.CPUs,
					joinSlots(inputChannels(stage)),
					joinSlots(outputChannels(stage)),
				)
			}
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}

func inputChannels(stage *engine.StageDef) []string {
	names := make([]string, len(stage.Inputs))
	for i, in := range stage.Inputs {
		names[i] = in.Channel
	}
	return names
}

func outputChannels(stage *engine.StageDef) []string {
	names := make([]string, len(stage.Outputs))
	for i, out := range stage.Outputs {
		name := out.Channel
		if out.Publish {
			name += "*" // публикуемый слот
		}
		names[i] = name
	}
	return names
}

func joinSlots(names []string) string {
	return strings.Join(names, ", ")
}
