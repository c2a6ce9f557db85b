package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/contentflow/internal/coordinator"
)

// ContentJob adapts the coordinator to the cron runner's no-argument
// callbacks. Pass-level failures are logged and left for the next tick.
type ContentJob struct {
	c *coordinator.Coordinator
}

func NewContentJob(c *coordinator.Coordinator) *ContentJob {
	return &ContentJob{c: c}
}

func (j *ContentJob) ProcessPosts() {
	ctx := context.Background()

	if err := j.c.ProcessPendingPosts(ctx); err != nil {
		slog.Error("post processing pass failed", "error", err.Error())
	}
}

func (j *ContentJob) ProcessRetries() {
	ctx := context.Background()

	if err := j.c.ProcessRetryQueue(ctx); err != nil {
		slog.Error("retry queue pass failed", "error", err.Error())
	}
}
