package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/contentflow/configs"
)

// PublishService posts one image with a caption and returns the provider's
// media identifier.
type PublishService interface {
	PublishPost(ctx context.Context, imageURL, caption string) (string, error)
}

type instagramService struct {
	cfg        config.Config
	baseURL    string
	httpClient *http.Client
}

func NewInstagramService(cfg config.Config) PublishService {
	return &instagramService{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("https://graph.instagram.com/%s", cfg.InstagramAPIVersion),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// PublishPost runs the Graph API two-step flow: create a media container,
// then publish it. The returned ID is the published media's identifier.
func (s *instagramService) PublishPost(ctx context.Context, imageURL, caption string) (string, error) {
	containerURL := fmt.Sprintf("%s/%s/media", s.baseURL, s.cfg.InstagramBusinessID)
	creationID, err := s.graphCall(ctx, containerURL, map[string]string{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": s.cfg.InstagramAccessToken,
	})
	if err != nil {
		return "", err
	}

	publishURL := fmt.Sprintf("%s/%s/media_publish", s.baseURL, s.cfg.InstagramBusinessID)
	mediaID, err := s.graphCall(ctx, publishURL, map[string]string{
		"creation_id":  creationID,
		"access_token": s.cfg.InstagramAccessToken,
	})
	if err != nil {
		return "", err
	}

	slog.Info("post published via Instagram Graph API", "media_id", mediaID)
	return mediaID, nil
}

func (s *instagramService) graphCall(ctx context.Context, url string, payload map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &PublishError{Err: fmt.Errorf("error marshalling payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", &PublishError{Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", &PublishError{Err: fmt.Errorf("HTTP request error: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &PublishError{Err: fmt.Errorf("error reading response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &PublishError{Err: fmt.Errorf("error parsing response: %w", err)}
	}
	if result.ID == "" {
		return "", &PublishError{Err: errors.New("no media ID returned from Instagram")}
	}
	return result.ID, nil
}

func graphError(statusCode int, body []byte) *PublishError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := 0
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
		code = payload.Error.Code
	}

	return &PublishError{
		Err:              fmt.Errorf("error response from Instagram (status %d, code %d): %s", statusCode, code, message),
		RateLimited:      statusCode == http.StatusTooManyRequests || code == 4 || code == 17 || code == 32,
		PermissionDenied: statusCode == http.StatusForbidden || code == 10 || code == 200,
	}
}
