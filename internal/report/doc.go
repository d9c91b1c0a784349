// Package report формирует итоговый отчёт запуска: терминальный
// статус каждого образца, стадия падения и список опубликованных
// артефактов. Код выхода процесса ненулевой, если хотя бы один
// образец не достиг терминальных стадий своей ветки.
package report
