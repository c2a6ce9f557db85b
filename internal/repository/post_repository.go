package repository

import (
	"context"
	"fmt"
	"time"

	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/airtable"
	"github.com/maheshrc27/contentflow/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Post, error)
	SetCaption(ctx context.Context, id, caption string) error
	MarkReady(ctx context.Context, id, imageURL string) error
	MarkCompleted(ctx context.Context, id, mediaID, publishDate string) error
	UpdateStatus(ctx context.Context, status string, id string) error
}

type postRepository struct {
	client *airtable.Client
	table  string
	f      config.PostFields
}

func NewPostRepository(client *airtable.Client, cfg config.Airtable) PostRepository {
	return &postRepository{
		client: client,
		table:  cfg.PostsTable,
		f:      cfg.Fields,
	}
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	formula := fmt.Sprintf("RECORD_ID() = '%s'", escapeFormulaValue(id))
	records, err := r.client.List(ctx, r.table, formula)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return r.toPost(records[0]), nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	records, err := r.client.List(ctx, r.table, "")
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, r.toPost(record))
	}
	return posts, nil
}

func (r *postRepository) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	formula := fmt.Sprintf("{%s} = '%s'", r.f.Status, escapeFormulaValue(status))
	records, err := r.client.List(ctx, r.table, formula)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, r.toPost(record))
	}
	return posts, nil
}

func (r *postRepository) SetCaption(ctx context.Context, id, caption string) error {
	_, err := r.client.Update(ctx, r.table, id, map[string]any{
		r.f.Caption: caption,
	})
	return err
}

func (r *postRepository) MarkReady(ctx context.Context, id, imageURL string) error {
	_, err := r.client.Update(ctx, r.table, id, map[string]any{
		r.f.ImageURL: imageURL,
		r.f.Status:   models.PostStatusReady,
	})
	return err
}

func (r *postRepository) MarkCompleted(ctx context.Context, id, mediaID, publishDate string) error {
	_, err := r.client.Update(ctx, r.table, id, map[string]any{
		r.f.Published:   models.PublishedYes,
		r.f.MediaID:     mediaID,
		r.f.PublishDate: publishDate,
		r.f.Status:      models.PostStatusCompleted,
	})
	return err
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, id string) error {
	_, err := r.client.Update(ctx, r.table, id, map[string]any{
		r.f.Status: status,
	})
	return err
}

func (r *postRepository) toPost(record airtable.Record) *models.Post {
	post := &models.Post{
		ID:          record.ID,
		Prompt:      getString(record.Fields, r.f.Prompt),
		Caption:     getString(record.Fields, r.f.Caption),
		ImageURL:    getString(record.Fields, r.f.ImageURL),
		Published:   getString(record.Fields, r.f.Published),
		MediaID:     getString(record.Fields, r.f.MediaID),
		PublishDate: getString(record.Fields, r.f.PublishDate),
		Status:      getString(record.Fields, r.f.Status),
	}
	if post.Published == "" {
		post.Published = models.PublishedNo
	}
	post.ScheduledTime = getTime(record.Fields, r.f.ScheduledTime)
	return post
}

func getString(fields map[string]any, name string) string {
	value, ok := fields[name].(string)
	if !ok {
		return ""
	}
	return value
}

func getTime(fields map[string]any, name string) time.Time {
	raw := getString(fields, name)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
