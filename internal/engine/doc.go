// Package engine содержит ядро оркестрации пайплайна.
//
// Включает:
//   - channel.go  — типизированные каналы (value / per-sample) с явным закрытием
//   - graph.go    — построение неизменяемого DAG стадий по именам каналов
//   - branch.go   — разрешение условной ветки графа при старте
//   - template.go — рендеринг шаблонов команд (text/template)
//
// Engine отвечает за структуру графа и контракт каналов;
// выполнение tasks — зона ответственности пакетов scheduler и runner.
package engine
