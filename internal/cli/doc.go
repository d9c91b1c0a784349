// Package cli реализует команды ampliflow: разовый запуск пайплайна
// (run), печать разрешённого графа без выполнения (plan) и режим
// наблюдения за входным каталогом (watch).
package cli
