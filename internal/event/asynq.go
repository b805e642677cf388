package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const eventQueue = "events"

// AsynqEmitter enqueues one task per event on a Redis-backed asynq queue.
// External workers (notification, invoicing, indexing) consume them with
// asynq's at-least-once retry semantics.
type AsynqEmitter struct {
	client *asynq.Client
}

func NewAsynqEmitter(redisAddr, redisPassword string) *AsynqEmitter {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
	})
	return &AsynqEmitter{client: client}
}

func (e *AsynqEmitter) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	task := asynq.NewTask(string(ev.Type), payload)
	if _, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(eventQueue),
		asynq.MaxRetry(10),
	); err != nil {
		return fmt.Errorf("enqueue %s event: %w", ev.Type, err)
	}
	return nil
}

func (e *AsynqEmitter) Close() error {
	return e.client.Close()
}
