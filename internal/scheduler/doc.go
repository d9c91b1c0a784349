// Package scheduler превращает статический граф стадий в событийное
// выполнение.
//
// Планировщик отвечает за:
//   - join: task создаётся, когда каждый входной слот стадии получил
//     tuple для ключа образца
//   - идемпотентность: пара (stage, sample) планируется ровно один раз
//   - бюджет: глобальные CPU-слоты захватываются перед запуском и
//     освобождаются при завершении; очередь готовых tasks — FIFO
//   - закрытие каналов и отличие постоянного голодания от ожидания
//   - изоляцию падений: упавший task голодит только свой образец
//
// Вся бухгалтерия живёт в одной горутине цикла Run; внешние процессы
// выполняются параллельно.
package scheduler
