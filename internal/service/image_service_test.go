package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/contentflow/configs"
)

func TestGenerateImage_DownloadsResultURL(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer download.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"created": 1, "data": [{"url": %q}]}`, download.URL+"/img.png")
	}))
	defer api.Close()

	cfg := config.Config{OpenAIAPIKey: "sk-test", ImageModel: "dall-e-3"}
	svc := NewImageService(cfg, option.WithBaseURL(api.URL))

	image, err := svc.GenerateImage(context.Background(), "a sunset over the bay")
	require.NoError(t, err)
	assert.Equal(t, imageBytes, image)
}

func TestGenerateImage_DownloadFailure(t *testing.T) {
	download := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer download.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"created": 1, "data": [{"url": %q}]}`, download.URL+"/img.png")
	}))
	defer api.Close()

	cfg := config.Config{OpenAIAPIKey: "sk-test", ImageModel: "dall-e-3"}
	svc := NewImageService(cfg, option.WithBaseURL(api.URL))

	_, err := svc.GenerateImage(context.Background(), "a sunset")
	require.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestGenerateImage_EmptyResponse(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created": 1, "data": []}`)
	}))
	defer api.Close()

	cfg := config.Config{OpenAIAPIKey: "sk-test", ImageModel: "dall-e-3"}
	svc := NewImageService(cfg, option.WithBaseURL(api.URL))

	_, err := svc.GenerateImage(context.Background(), "a sunset")
	require.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Error(), "no image URL")
}

func TestUploadImage_RejectsUnknownBytes(t *testing.T) {
	cfg := config.Config{}
	cfg.R2.PublicBaseURL = "https://pub.example.com"
	svc := NewR2Service(cfg)

	_, err := svc.UploadImage(context.Background(), []byte("definitely not an image"))
	require.Error(t, err)

	var uploadErr *UploadError
	assert.ErrorAs(t, err, &uploadErr)
}
