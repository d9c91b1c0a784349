// Package runner выполняет внешние команды tasks.
//
// Раннер рендерит шаблон команды стадии, запускает /bin/sh -c в
// выделенном scratch-каталоге, захватывает stdout/stderr для
// диагностики и разрешает объявленные выходные glob-шаблоны после
// выхода процесса. Повторных попыток нет.
package runner
