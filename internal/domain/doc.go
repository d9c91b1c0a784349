// Package domain содержит основные доменные модели Ampliflow:
//
//   - Sample / SampleKey — обнаруженный образец и его ключ
//   - Task — одно выполнение стадии для одного образца
//   - Run — запуск пайплайна целиком
//   - статусы и их жизненные циклы
//
// Доменные модели не зависят от других internal пакетов.
package domain
