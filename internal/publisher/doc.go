// Package publisher экстернализует артефакты tasks.
//
// Публикуемые выходные слоты копируются (не перемещаются) в каталог
// результатов с именами, выбранными самой стадией. Ошибки публикации
// нефатальны и никогда не отменяют успех task.
package publisher
