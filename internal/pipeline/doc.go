// Package pipeline определяет конкретный граф ампликонного пайплайна:
//
//	qc → map → [primer_trim] → consensus
//	             └──────────→ extract (только ветка trim)
//
// Каждая стадия — непрозрачный шаблон внешней команды с объявленными
// входными/выходными слотами и ресурсными запросами. Семантика самих
// инструментов (fastp, minimap2/bwa, samtools, ivar) вне зоны
// ответственности оркестратора.
package pipeline
