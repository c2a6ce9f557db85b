package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/contentflow/internal/coordinator"
)

type Worker struct {
	c *coordinator.Coordinator
}

func NewWorker(c *coordinator.Coordinator) *Worker {
	return &Worker{c: c}
}

func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return w.c.PublishPost(ctx, payload.RecordID)
}
