// Package discovery обнаруживает образцы на файловой системе.
//
// Сканирование сопоставляет пары файлов чтений по конвенции
// <prefix>_R1_001.* / <prefix>_R2_001.*; каждая пара становится одним
// tuple входного канала. Непарный файл — фатальная ошибка настройки.
package discovery
