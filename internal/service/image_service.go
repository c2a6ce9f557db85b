package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	config "github.com/maheshrc27/contentflow/configs"
)

type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type imageService struct {
	cfg        config.Config
	client     openai.Client
	httpClient *http.Client
}

func NewImageService(cfg config.Config, opts ...option.RequestOption) ImageService {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}, opts...)
	return &imageService{
		cfg:        cfg,
		client:     openai.NewClient(opts...),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *imageService) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:   openai.ImageModel(s.cfg.ImageModel),
		Prompt:  prompt,
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityHD,
		N:       openai.Int(1),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, &GenerationError{Err: err}
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, &GenerationError{Err: errors.New("no image URL returned")}
	}

	image, err := s.download(ctx, resp.Data[0].URL)
	if err != nil {
		slog.Info(err.Error())
		return nil, &GenerationError{Err: err}
	}
	return image, nil
}

// The image API hands back a short-lived URL; the bytes have to be pulled
// down before the link expires.
func (s *imageService) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code downloading image: %d", resp.StatusCode)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading image body: %w", err)
	}
	return image, nil
}
