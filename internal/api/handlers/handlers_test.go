package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/api/handlers"
	"github.com/maheshrc27/contentflow/internal/api/middleware"
	"github.com/maheshrc27/contentflow/internal/models"
)

type stubPostRepo struct {
	posts []*models.Post
	err   error

	lastStatus string
}

func (s *stubPostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *stubPostRepo) List(ctx context.Context) ([]*models.Post, error) {
	return s.posts, s.err
}

func (s *stubPostRepo) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	s.lastStatus = status
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Post
	for _, p := range s.posts {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPostRepo) SetCaption(ctx context.Context, id, caption string) error { return nil }
func (s *stubPostRepo) MarkReady(ctx context.Context, id, imageURL string) error { return nil }
func (s *stubPostRepo) MarkCompleted(ctx context.Context, id, mediaID, publishDate string) error {
	return nil
}
func (s *stubPostRepo) UpdateStatus(ctx context.Context, status string, id string) error {
	return nil
}

type stubRetryRepo struct {
	records    []*models.RetryRecord
	requeueErr error

	requeued []string
}

func (s *stubRetryRepo) GetByID(ctx context.Context, id string) (*models.RetryRecord, error) {
	return nil, nil
}

func (s *stubRetryRepo) List(ctx context.Context) ([]*models.RetryRecord, error) {
	return s.records, nil
}

func (s *stubRetryRepo) ListPending(ctx context.Context) ([]*models.RetryRecord, error) {
	return nil, nil
}

func (s *stubRetryRepo) Upsert(ctx context.Context, operation, recordID, details string) error {
	return nil
}

func (s *stubRetryRepo) Resolve(ctx context.Context, id, status string) error { return nil }

func (s *stubRetryRepo) Requeue(ctx context.Context, id string) error {
	if s.requeueErr != nil {
		return s.requeueErr
	}
	s.requeued = append(s.requeued, id)
	return nil
}

func newTestApp(pr *stubPostRepo, rr *stubRetryRepo) *fiber.App {
	cfg := config.Config{OpsAPIKey: "secret-key"}

	app := fiber.New()
	auth := middleware.NewAuthMiddleware(cfg)
	api := app.Group("/api", auth.AuthMiddleware())

	ph := handlers.NewPostHandler(pr)
	rh := handlers.NewRetryHandler(rr)
	api.Get("/posts", ph.ListPosts)
	api.Get("/retries", rh.ListRetries)
	api.Post("/retries/requeue", rh.RequeueRetry)

	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestAuthMiddleware_MissingKey(t *testing.T) {
	app := newTestApp(&stubPostRepo{}, &stubRetryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_WrongKey(t *testing.T) {
	app := newTestApp(&stubPostRepo{}, &stubRetryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("X-API-Key", "not-it")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_QueryParamAccepted(t *testing.T) {
	app := newTestApp(&stubPostRepo{}, &stubRetryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts?api_key=secret-key", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListPosts_StatusFilter(t *testing.T) {
	pr := &stubPostRepo{posts: []*models.Post{
		{ID: "rec1", Status: models.PostStatusPending},
		{ID: "rec2", Status: models.PostStatusReady},
	}}
	app := newTestApp(pr, &stubRetryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts?status=Ready", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ready", pr.lastStatus)

	body := decodeBody(t, resp)
	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	assert.Len(t, posts, 1)
}

func TestListPosts_RepoError(t *testing.T) {
	pr := &stubPostRepo{err: errors.New("airtable down")}
	app := newTestApp(pr, &stubRetryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestListRetries(t *testing.T) {
	rr := &stubRetryRepo{records: []*models.RetryRecord{
		{ID: "ret1", Operation: models.OperationGenerate, Status: models.RetryStatusFailed},
	}}
	app := newTestApp(&stubPostRepo{}, rr)

	req := httptest.NewRequest(http.MethodGet, "/api/retries", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	retries, ok := body["retries"].([]any)
	require.True(t, ok)
	assert.Len(t, retries, 1)
}

func TestRequeueRetry(t *testing.T) {
	rr := &stubRetryRepo{}
	app := newTestApp(&stubPostRepo{}, rr)

	payload := bytes.NewBufferString(`{"id": "ret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/retries/requeue", payload)
	req.Header.Set("X-API-Key", "secret-key")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"ret1"}, rr.requeued)
}

func TestRequeueRetry_MissingID(t *testing.T) {
	rr := &stubRetryRepo{}
	app := newTestApp(&stubPostRepo{}, rr)

	payload := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/retries/requeue", payload)
	req.Header.Set("X-API-Key", "secret-key")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, rr.requeued)
}

func TestRequeueRetry_NotRequeueable(t *testing.T) {
	rr := &stubRetryRepo{requeueErr: errors.New("retry record ret1 is Pending, only Failed records can be requeued")}
	app := newTestApp(&stubPostRepo{}, rr)

	payload := bytes.NewBufferString(`{"id": "ret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/retries/requeue", payload)
	req.Header.Set("X-API-Key", "secret-key")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
