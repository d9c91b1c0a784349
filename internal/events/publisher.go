package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Ampliflow/internal/domain"
	"github.com/shaiso/Ampliflow/internal/report"
)

// EventType — тип события жизненного цикла.
type EventType string

// Типы событий.
const (
	EventTypeTaskStarted  EventType = "task.started"
	EventTypeTaskFinished EventType = "task.finished"
	EventTypeRunFinished  EventType = "run.finished"
)

// Event — сообщение для публикации.
type Event struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// TaskEventPayload — payload событий task.started и task.finished.
type TaskEventPayload struct {
	TaskID   uuid.UUID        `json:"task_id"`
	RunID    uuid.UUID        `json:"run_id"`
	StageID  string           `json:"stage_id"`
	Sample   domain.SampleKey `json:"sample"`
	Status   string           `json:"status"`
	ExitCode int              `json:"exit_code,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// RunFinishedPayload — payload события run.finished.
type RunFinishedPayload struct {
	RunID     uuid.UUID `json:"run_id"`
	Branch    string    `json:"branch"`
	Status    string    `json:"status"`
	Samples   int       `json:"samples"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// Publisher публикует события жизненного цикла в брокер.
// Реализует приёмник событий планировщика.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// TaskStarted публикует событие запуска task.
func (p *Publisher) TaskStarted(ctx context.Context, task *domain.Task) error {
	return p.publish(ctx, RoutingKeyTaskStarted, EventTypeTaskStarted, TaskEventPayload{
		TaskID:  task.ID,
		RunID:   task.RunID,
		StageID: task.StageID,
		Sample:  task.Sample,
		Status:  string(task.Status),
	})
}

// TaskFinished публикует событие завершения task (успех или падение).
func (p *Publisher) TaskFinished(ctx context.Context, task *domain.Task) error {
	return p.publish(ctx, RoutingKeyTaskFinished, EventTypeTaskFinished, TaskEventPayload{
		TaskID:   task.ID,
		RunID:    task.RunID,
		StageID:  task.StageID,
		Sample:   task.Sample,
		Status:   string(task.Status),
		ExitCode: task.ExitCode,
		Error:    task.Error,
	})
}

// RunFinished публикует итог запуска.
func (p *Publisher) RunFinished(ctx context.Context, run *domain.Run, rep *report.Report) error {
	return p.publish(ctx, RoutingKeyRunFinished, EventTypeRunFinished, RunFinishedPayload{
		RunID:     run.ID,
		Branch:    run.Branch,
		Status:    string(run.Status),
		Samples:   run.Samples,
		Succeeded: rep.Succeeded(),
		Failed:    rep.Failed(),
	})
}

// publish сериализует событие и отправляет его в обменник.
func (p *Publisher) publish(ctx context.Context, key RoutingKey, typ EventType, payload any) error {
	evt := &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeLifecycle),
			string(key),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.ID,
				Timestamp:    evt.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", key, err)
		}

		p.logger.Debug("event published", "type", typ, "event_id", evt.ID)
		return nil
	})
}
