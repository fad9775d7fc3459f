package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quka-ai/moodjournal/pkg/ai"
)

const (
	NAME = "ollama"

	DEFAULT_ENDPOINT     = "http://localhost:11434/v1"
	DEFAULT_CHAT_MODEL   = "llama3.2"
	DEFAULT_VISION_MODEL = "llava"
)

type ModelName struct {
	ChatModel   string `toml:"chat_model"`
	VisionModel string `toml:"vision_model"`
}

// Driver 本地部署的 ollama, 只提供摘要与图片描述, 不支持语音转写
type Driver struct {
	client *openai.Client
	model  ModelName
}

func New(endpoint string, model ModelName) *Driver {
	// ollama 不校验 token, 但 openai 客户端要求非空
	cfg := openai.DefaultConfig(NAME)
	cfg.BaseURL = DEFAULT_ENDPOINT
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	if model.ChatModel == "" {
		model.ChatModel = DEFAULT_CHAT_MODEL
	}
	if model.VisionModel == "" {
		model.VisionModel = DEFAULT_VISION_MODEL
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *Driver) chat(ctx context.Context, model string, msg openai.ChatCompletionMessage) (ai.GenerateResponse, error) {
	var result ai.GenerateResponse
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		return result, fmt.Errorf("ollama completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return result, ai.ErrEmptyResponse
	}

	result.Text = strings.TrimSpace(resp.Choices[0].Message.Content)
	if result.Text == "" {
		return result, ai.ErrEmptyResponse
	}
	result.Model = resp.Model
	if resp.Usage.TotalTokens > 0 {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return result, nil
}

func (s *Driver) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", s.model.ChatModel))
	return s.chat(ctx, s.model.ChatModel, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

func (s *Driver) DescribeImage(ctx context.Context, prompt string, image ai.ImageInput) (ai.GenerateResponse, error) {
	slog.Debug("DescribeImage", slog.String("driver", NAME), slog.String("model", s.model.VisionModel))

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return s.chat(ctx, s.model.VisionModel, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image.Data),
				},
			},
		},
	})
}
