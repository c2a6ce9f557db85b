package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	config "github.com/maheshrc27/contentflow/configs"
)

const captionInstruction = "Please generate a detailed caption and relevant hashtags, ensuring hashtags are included."

type CaptionService interface {
	GenerateCaption(ctx context.Context, prompt string) (string, error)
}

type captionService struct {
	cfg    config.Config
	client openai.Client
}

func NewCaptionService(cfg config.Config, opts ...option.RequestOption) CaptionService {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}, opts...)
	return &captionService{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

func (s *captionService) GenerateCaption(ctx context.Context, prompt string) (string, error) {
	systemPrompt := fmt.Sprintf(
		"Generate a detailed caption based on %s and %s, include power words and realism and include 10 relevant hashtags at the end of the caption.",
		prompt, s.cfg.CompanyName,
	)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.cfg.CaptionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(captionInstruction),
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return "", &GenerationError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: errors.New("no completion choices returned")}
	}

	caption := formatCaption(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", &GenerationError{Err: errors.New("empty caption returned")}
	}
	return caption, nil
}

// formatCaption flattens the completion into a single line and folds any
// trailing "Hashtags:" section back into the caption text, keeping only
// tokens that are actual hashtags.
func formatCaption(content string) string {
	caption, hashtagsPart, found := strings.Cut(content, "Hashtags:")
	caption = scrub(caption)
	if !found {
		return caption
	}

	var hashtags []string
	for _, token := range strings.Fields(hashtagsPart) {
		if strings.HasPrefix(token, "#") {
			hashtags = append(hashtags, token)
		}
	}
	if len(hashtags) == 0 {
		return caption
	}
	return caption + " " + strings.Join(hashtags, " ")
}

func scrub(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, `"`, "")
	return strings.TrimSpace(text)
}
