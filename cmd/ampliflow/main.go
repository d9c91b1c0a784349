// Ampliflow — оркестратор ампликонного пайплайна.
//
// Использование:
//
//	ampliflow <command> [flags]
//
// Команды:
//
//	run    Обнаружить образцы и выполнить пайплайн один раз
//	plan   Разрешить граф пайплайна и напечатать его без выполнения
//	watch  Наблюдать за входным каталогом по расписанию
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Ampliflow/internal/cli"
	"github.com/shaiso/Ampliflow/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	logger := telemetry.SetupLogger()

	rootCmd := &cobra.Command{
		Use:           "ampliflow",
		Short:         "Ampliflow — amplicon pipeline orchestrator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		cli.NewRunCmd(logger),
		cli.NewPlanCmd(logger),
		cli.NewWatchCmd(logger),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
