package queue

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueues future-dated publishes. Task IDs are derived from the
// record ID, so re-scheduling the same post on every coordinator pass is a
// no-op until the task runs.
type Client struct {
	asynqClient *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynqClient: asynqClient}
}

func (c *Client) SchedulePublish(recordID string, delay time.Duration) error {
	payload, err := json.Marshal(PublishPostPayload{RecordID: recordID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, payload)

	_, err = c.asynqClient.Enqueue(task, asynq.ProcessIn(delay), asynq.TaskID(TaskTypePublishPost+":"+recordID))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Publish scheduled for record %s in %s", recordID, delay)
	return nil
}
