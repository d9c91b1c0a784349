package pipeline

import (
	"github.com/shaiso/Ampliflow/internal/config"
	"github.com/shaiso/Ampliflow/internal/engine"
)

// Имена каналов пайплайна.
const (
	ChannelRawReads     = "reads.raw"
	ChannelTrimmedReads = "reads.trimmed"
	ChannelReference    = "ref.fasta"
	ChannelPrimerBed    = "primer.bed"
	ChannelSortedBAM    = "align.sorted"
	ChannelTrimmedBAM   = "align.primertrimmed"
	ChannelConsensus    = "consensus.fa"
	ChannelAmpliconBAM  = "amplicon.bam"
)

// ID стадий.
const (
	StageQC         = "qc"
	StageMap        = "map"
	StagePrimerTrim = "primer_trim"
	StageConsensus  = "consensus"
	StageExtract    = "extract"
)

// Шаблоны команды картирования. Переключение движка меняет только
// шаблон, топология графа не меняется.
const (
	minimap2Command = `minimap2 -ax sr -t {{ .CPUs }} {{ in "ref.fasta" 0 }} {{ in "reads.trimmed" 0 }} {{ in "reads.trimmed" 1 }} | samtools sort -@ {{ .CPUs }} -o {{ .Sample }}.sorted.bam - && samtools index {{ .Sample }}.sorted.bam`

	bwaCommand = `bwa mem -t {{ .CPUs }} {{ in "ref.fasta" 0 }} {{ in "reads.trimmed" 0 }} {{ in "reads.trimmed" 1 }} | samtools sort -@ {{ .CPUs }} -o {{ .Sample }}.sorted.bam - && samtools index {{ .Sample }}.sorted.bam`
)

// Sources возвращает источники графа: каналы, наполняемые при старте
// запуска, а не стадиями.
func Sources(ctx *config.ExecutionContext) []engine.SourceDef {
	sources := []engine.SourceDef{
		{Channel: ChannelRawReads, Kind: engine.SampleChannel},
		{Channel: ChannelReference, Kind: engine.ValueChannel},
	}
	if ctx.HasPrimerScheme() {
		sources = append(sources, engine.SourceDef{
			Channel: ChannelPrimerBed, Kind: engine.ValueChannel,
		})
	}
	return sources
}

// Stages возвращает упорядоченный список стадий ампликонного пайплайна.
//
// Условная ветка: при сконфигурированной таблице праймеров (BranchTrim)
// картированные чтения проходят обрезку праймеров перед консенсусом и
// дополнительно извлекается целевой ампликон; без таблицы (BranchDirect)
// консенсус строится напрямую по сортированному BAM.
//
// Стадии записи частот и генерации отчёта в исходном пайплайне были
// отключены без контракта входов/выходов и здесь не определяются.
func Stages(ctx *config.ExecutionContext) []*engine.StageDef {
	mapCommand := minimap2Command
	if ctx.Engine == config.EngineBWA {
		mapCommand = bwaCommand
	}

	return []*engine.StageDef{
		{
			ID:        StageQC,
			Name:      "read QC and adapter trimming",
			PerSample: true,
			CPUs:      2,
			Command: `fastp --in1 {{ in "reads.raw" 0 }} --in2 {{ in "reads.raw" 1 }} ` +
				`--out1 {{ .Sample }}_R1.trim.fastq.gz --out2 {{ .Sample }}_R2.trim.fastq.gz ` +
				`--thread {{ .CPUs }} --json {{ .Sample }}.fastp.json --html /dev/null`,
			Inputs: []engine.InputSlot{
				{Channel: ChannelRawReads},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelTrimmedReads, Glob: "*.trim.fastq.gz"},
			},
		},
		{
			ID:         StageMap,
			Name:       "read mapping and coordinate sort",
			PerSample:  true,
			CPUs:       3,
			MemoryGB:   4,
			TimeoutSec: 3600,
			Command:    mapCommand,
			Inputs: []engine.InputSlot{
				{Channel: ChannelTrimmedReads},
				{Channel: ChannelReference},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelSortedBAM, Glob: "*.sorted.bam*"},
			},
		},
		{
			ID:        StagePrimerTrim,
			Name:      "primer trimming",
			PerSample: true,
			Branches:  []engine.Branch{engine.BranchTrim},
			CPUs:      1,
			Command: `ivar trim -e -i {{ in "align.sorted" 0 }} -b {{ in "primer.bed" 0 }} -p {{ .Sample }}.primertrim && ` +
				`samtools sort -o {{ .Sample }}.primertrim.sorted.bam {{ .Sample }}.primertrim.bam && ` +
				`samtools index {{ .Sample }}.primertrim.sorted.bam`,
			Inputs: []engine.InputSlot{
				{Channel: ChannelSortedBAM},
				{Channel: ChannelPrimerBed},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelTrimmedBAM, Glob: "*.primertrim.sorted.bam*"},
			},
		},
		{
			ID:        StageConsensus,
			Name:      "consensus calling",
			PerSample: true,
			Branches:  []engine.Branch{engine.BranchTrim},
			CPUs:      1,
			Command: `samtools mpileup -aa -A -d 0 -Q 0 {{ in "align.primertrimmed" 0 }} | ` +
				`ivar consensus -p {{ .Sample }}.consensus -t 0.75 -m 10`,
			Inputs: []engine.InputSlot{
				{Channel: ChannelTrimmedBAM},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelConsensus, Glob: "*.consensus.fa", Publish: true},
			},
		},
		{
			// Вариант консенсуса для ветки direct: тот же ID, другой
			// входной канал. Ветки взаимоисключающие, конфликта ID нет.
			ID:        StageConsensus,
			Name:      "consensus calling",
			PerSample: true,
			Branches:  []engine.Branch{engine.BranchDirect},
			CPUs:      1,
			Command: `samtools mpileup -aa -A -d 0 -Q 0 {{ in "align.sorted" 0 }} | ` +
				`ivar consensus -p {{ .Sample }}.consensus -t 0.75 -m 10`,
			Inputs: []engine.InputSlot{
				{Channel: ChannelSortedBAM},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelConsensus, Glob: "*.consensus.fa", Publish: true},
			},
		},
		{
			ID:        StageExtract,
			Name:      "target amplicon extraction",
			PerSample: true,
			Branches:  []engine.Branch{engine.BranchTrim},
			CPUs:      1,
			Command: `extract-amplicon.py {{ in "align.primertrimmed" 0 }} {{ in "primer.bed" 0 }} ` +
				`{{ .Amplicon }} _LEFT _RIGHT`,
			Inputs: []engine.InputSlot{
				{Channel: ChannelTrimmedBAM},
				{Channel: ChannelPrimerBed},
			},
			Outputs: []engine.OutputSlot{
				{Channel: ChannelAmpliconBAM, Glob: "*_extracted_reads.bam", Publish: true},
			},
		},
	}
}

// Build строит граф пайплайна для конфигурации запуска:
// разрешает ветку, отбирает стадии и связывает каналы.
func Build(ctx *config.ExecutionContext) (*engine.Graph, error) {
	branch := engine.ResolveBranch(ctx.HasPrimerScheme())
	return engine.Build(Stages(ctx), Sources(ctx), branch, ctx.CPUs)
}
