package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Топология событий.
const (
	ExchangeLifecycle Exchange = "ampliflow.lifecycle"

	QueueTaskEvents Queue = "tasks.lifecycle"
	QueueRunEvents  Queue = "runs.finished"

	RoutingKeyTaskStarted  RoutingKey = "task.started"
	RoutingKeyTaskFinished RoutingKey = "task.finished"
	RoutingKeyRunFinished  RoutingKey = "run.finished"
)

// SetupTopology объявляет обменник, очереди и привязки.
// Идемпотентна: повторный вызов на живом брокере безопасен.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeLifecycle),
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeLifecycle, err)
		}

		bindings := []struct {
			queue   Queue
			pattern string
		}{
			{QueueTaskEvents, "task.*"},
			{QueueRunEvents, string(RoutingKeyRunFinished)},
		}

		for _, b := range bindings {
			_, err := ch.QueueDeclare(
				string(b.queue),
				true,  // durable
				false, // delete when unused
				false, // exclusive
				false, // no-wait
				nil,
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			err = ch.QueueBind(string(b.queue), b.pattern, string(ExchangeLifecycle), false, nil)
			if err != nil {
				return fmt.Errorf("bind queue %s: %w", b.queue, err)
			}
		}

		return nil
	})
}
