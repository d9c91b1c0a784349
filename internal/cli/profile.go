package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/Ampliflow/internal/config"
)

// profileFlags — флаги профиля запуска, общие для команд.
// Приоритет: флаги > переменные окружения > YAML-профиль > умолчания.
type profileFlags struct {
	profile    string
	inputDir   string
	resultsDir string
	reference  string
	primerBed  string
	amplicon   string
	engine     string
	cpus       int
}

// bind регистрирует флаги профиля на команде.
func (f *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.profile, "profile", "", "Path to a YAML run profile")
	cmd.Flags().StringVar(&f.inputDir, "input-dir", "", "Directory with paired read files")
	cmd.Flags().StringVar(&f.resultsDir, "results-dir", "", "Directory for published artifacts")
	cmd.Flags().StringVar(&f.reference, "reference", "", "Reference sequence (FASTA)")
	cmd.Flags().StringVar(&f.primerBed, "primer-bed", "", "Primer coordinate table (BED); enables the trim branch")
	cmd.Flags().StringVar(&f.amplicon, "amplicon", "", "Target amplicon name for extraction")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Mapping engine: minimap2 or bwa")
	cmd.Flags().IntVar(&f.cpus, "cpus", 0, "Global CPU slot budget")
}

// resolve загружает профиль, накладывает флаги и валидирует контекст.
func (f *profileFlags) resolve(cmd *cobra.Command) (*config.ExecutionContext, error) {
	ctx, err := config.Load(f.profile)
	if err != nil {
		return nil, err
	}

	if f.inputDir != "" {
		ctx.InputDir = f.inputDir
	}
	if f.resultsDir != "" {
		ctx.ResultsDir = f.resultsDir
	}
	if f.reference != "" {
		ctx.Reference = f.reference
	}
	if cmd.Flags().Changed("primer-bed") {
		ctx.PrimerBed = f.primerBed
	}
	if f.amplicon != "" {
		ctx.Amplicon = f.amplicon
	}
	if f.engine != "" {
		ctx.Engine = f.engine
	}
	if f.cpus > 0 {
		ctx.CPUs = f.cpus
	}

	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	return ctx, nil
}
