package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/airtable"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/service"
)

// Stamp written to the Publish Date column, in the configured timezone.
const publishDateLayout = "01/02/2006 15:04:05"

// Scheduler hands a future-dated publish to the task queue.
type Scheduler interface {
	SchedulePublish(recordID string, delay time.Duration) error
}

// Coordinator drives Posts through generation and publishing. Provider
// failures become retry queue records; store failures abort the pass and the
// next scheduled pass picks up from persisted state. The store's status
// fields are the only synchronization, so overlapping or duplicate triggers
// are tolerated.
type Coordinator struct {
	pr    repository.PostRepository
	rr    repository.RetryRepository
	cs    service.CaptionService
	is    service.ImageService
	hs    service.HostingService
	ps    service.PublishService
	sched Scheduler
	loc   *time.Location
	now   func() time.Time
}

func New(
	pr repository.PostRepository,
	rr repository.RetryRepository,
	cs service.CaptionService,
	is service.ImageService,
	hs service.HostingService,
	ps service.PublishService,
	sched Scheduler,
	loc *time.Location) *Coordinator {
	if loc == nil {
		loc = time.UTC
	}
	return &Coordinator{
		pr:    pr,
		rr:    rr,
		cs:    cs,
		is:    is,
		hs:    hs,
		ps:    ps,
		sched: sched,
		loc:   loc,
		now:   time.Now,
	}
}

// ProcessPendingPosts runs one full pass: generate content for every Pending
// post, then publish every Ready post that is due. Posts are handled one at
// a time; a provider failure on one post is recorded in the retry queue and
// the pass moves on.
func (c *Coordinator) ProcessPendingPosts(ctx context.Context) error {
	pending, err := c.pr.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending posts: %w", err)
	}

	for _, post := range pending {
		if err := c.generatePost(ctx, post); err != nil {
			if isStoreError(err) {
				return err
			}
			slog.Info("generation failed", "record", post.ID, "error", err.Error())
			if err := c.rr.Upsert(ctx, models.OperationGenerate, post.ID, err.Error()); err != nil {
				return fmt.Errorf("failed to record generate retry: %w", err)
			}
		}
	}

	ready, err := c.pr.ListByStatus(ctx, models.PostStatusReady)
	if err != nil {
		return fmt.Errorf("failed to list ready posts: %w", err)
	}

	for _, post := range ready {
		if delay := post.ScheduledTime.Sub(c.now()); !post.ScheduledTime.IsZero() && delay > 0 {
			if c.sched != nil {
				if err := c.sched.SchedulePublish(post.ID, delay); err != nil {
					slog.Info("failed to schedule publish", "record", post.ID, "error", err.Error())
				}
			}
			continue
		}

		if err := c.publishPost(ctx, post); err != nil {
			if isStoreError(err) {
				return err
			}
			slog.Info("publish failed", "record", post.ID, "error", err.Error())
			if err := c.rr.Upsert(ctx, models.OperationPublish, post.ID, err.Error()); err != nil {
				return fmt.Errorf("failed to record publish retry: %w", err)
			}
		}
	}

	return nil
}

// PublishPost publishes a single post by record ID. Used by the task queue
// worker for future-dated posts; the status guard makes duplicate deliveries
// harmless.
func (c *Coordinator) PublishPost(ctx context.Context, recordID string) error {
	post, err := c.pr.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to fetch post %s: %w", recordID, err)
	}
	if post == nil {
		slog.Info("scheduled post no longer exists", "record", recordID)
		return nil
	}
	if post.Status != models.PostStatusReady {
		return nil
	}

	if err := c.publishPost(ctx, post); err != nil {
		if isStoreError(err) {
			return err
		}
		slog.Info("publish failed", "record", post.ID, "error", err.Error())
		return c.rr.Upsert(ctx, models.OperationPublish, post.ID, err.Error())
	}
	return nil
}

// ProcessRetryQueue gives every Pending retry record exactly one more
// attempt. Success resolves the record Completed with the same post updates
// as the primary path; another failure resolves it Failed, which is terminal
// until an operator requeues it. Resolved records are never touched again.
func (c *Coordinator) ProcessRetryQueue(ctx context.Context) error {
	items, err := c.rr.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list retry queue: %w", err)
	}

	for _, item := range items {
		post, err := c.pr.GetByID(ctx, item.RecordID)
		if err != nil {
			return fmt.Errorf("failed to fetch post %s: %w", item.RecordID, err)
		}

		status := models.RetryStatusCompleted
		if post == nil {
			slog.Info("retry target no longer exists", "record", item.RecordID)
			status = models.RetryStatusFailed
		} else if attemptErr := c.reattempt(ctx, item.Operation, post); attemptErr != nil {
			if isStoreError(attemptErr) {
				return attemptErr
			}
			slog.Info("retry attempt failed", "operation", item.Operation, "record", item.RecordID, "error", attemptErr.Error())
			status = models.RetryStatusFailed
		}

		if err := c.rr.Resolve(ctx, item.ID, status); err != nil {
			return fmt.Errorf("failed to resolve retry record %s: %w", item.ID, err)
		}
	}

	return nil
}

// reattempt re-runs the recorded operation. A post that has already moved
// past the state the operation applies to needs no provider call: the work
// is done and the record resolves Completed.
func (c *Coordinator) reattempt(ctx context.Context, operation string, post *models.Post) error {
	switch operation {
	case models.OperationGenerate:
		if post.Status != models.PostStatusPending {
			return nil
		}
		return c.generatePost(ctx, post)
	case models.OperationPublish:
		if post.Status != models.PostStatusReady {
			return nil
		}
		return c.publishPost(ctx, post)
	default:
		return fmt.Errorf("unknown operation %q", operation)
	}
}

// generatePost takes a Pending post through caption generation, image
// generation and hosting upload, then marks it Ready. Each completed step is
// persisted immediately so a later attempt resumes where this one stopped.
func (c *Coordinator) generatePost(ctx context.Context, post *models.Post) error {
	if post.Prompt == "" {
		return &service.GenerationError{Err: errors.New("post has no prompt")}
	}

	if post.Caption == "" {
		caption, err := c.cs.GenerateCaption(ctx, post.Prompt)
		if err != nil {
			return err
		}
		if err := c.pr.SetCaption(ctx, post.ID, caption); err != nil {
			return err
		}
		post.Caption = caption
	}

	if post.ImageURL == "" {
		image, err := c.is.GenerateImage(ctx, post.Caption)
		if err != nil {
			return err
		}

		imageURL, err := c.hs.UploadImage(ctx, image)
		if err != nil {
			return err
		}

		if err := c.pr.MarkReady(ctx, post.ID, imageURL); err != nil {
			return err
		}
		post.ImageURL = imageURL
	} else if err := c.pr.UpdateStatus(ctx, models.PostStatusReady, post.ID); err != nil {
		return err
	}

	post.Status = models.PostStatusReady
	return nil
}

// publishPost publishes one Ready post and immediately marks it Completed,
// so the post cannot be picked up again within this or any concurrent pass.
func (c *Coordinator) publishPost(ctx context.Context, post *models.Post) error {
	if post.Status != models.PostStatusReady {
		return nil
	}
	if post.ImageURL == "" || post.Caption == "" {
		return &service.PublishError{Err: errors.New("post is missing image URL or caption")}
	}

	mediaID, err := c.ps.PublishPost(ctx, post.ImageURL, post.Caption)
	if err != nil {
		return err
	}

	publishDate := c.now().In(c.loc).Format(publishDateLayout)
	if err := c.pr.MarkCompleted(ctx, post.ID, mediaID, publishDate); err != nil {
		return err
	}

	post.MediaID = mediaID
	post.Published = models.PublishedYes
	post.PublishDate = publishDate
	post.Status = models.PostStatusCompleted
	return nil
}

func isStoreError(err error) bool {
	var storeErr *airtable.Error
	return errors.As(err, &storeErr)
}
