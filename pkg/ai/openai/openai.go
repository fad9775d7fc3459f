package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/quka-ai/moodjournal/pkg/ai"
)

const (
	NAME = "openai"

	// groq exposes an openai compatible api
	DEFAULT_ENDPOINT            = "https://api.groq.com/openai/v1"
	DEFAULT_CHAT_MODEL          = "llama-3.3-70b-versatile"
	DEFAULT_VISION_MODEL        = "llama-3.2-11b-vision-preview"
	DEFAULT_TRANSCRIPTION_MODEL = "whisper-large-v3-turbo"
	DEFAULT_TRANSLATION_MODEL   = "whisper-large-v3"
)

type ModelName struct {
	ChatModel          string `toml:"chat_model"`
	VisionModel        string `toml:"vision_model"`
	TranscriptionModel string `toml:"transcription_model"`
	TranslationModel   string `toml:"translation_model"`
}

type Driver struct {
	client *openai.Client
	model  ModelName
}

func New(token, proxy string, model ModelName) *Driver {
	cfg := openai.DefaultConfig(token)
	cfg.BaseURL = DEFAULT_ENDPOINT
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	if model.ChatModel == "" {
		model.ChatModel = DEFAULT_CHAT_MODEL
	}
	if model.VisionModel == "" {
		model.VisionModel = DEFAULT_VISION_MODEL
	}
	if model.TranscriptionModel == "" {
		model.TranscriptionModel = DEFAULT_TRANSCRIPTION_MODEL
	}
	if model.TranslationModel == "" {
		model.TranslationModel = DEFAULT_TRANSLATION_MODEL
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func convertUsage(u openai.Usage) *ai.Usage {
	return &ai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

func (s *Driver) complete(ctx context.Context, req openai.ChatCompletionRequest) (ai.GenerateResponse, error) {
	var result ai.GenerateResponse
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return result, fmt.Errorf("Completion error: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return result, ai.ErrEmptyResponse
	}

	result.Text = strings.TrimSpace(resp.Choices[0].Message.Content)
	result.Model = resp.Model
	result.Usage = convertUsage(resp.Usage)
	return result, nil
}

func (s *Driver) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", s.model.ChatModel))

	return s.complete(ctx, openai.ChatCompletionRequest{
		Model: s.model.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
}

func (s *Driver) DescribeImage(ctx context.Context, prompt string, image ai.ImageInput) (ai.GenerateResponse, error) {
	slog.Debug("DescribeImage", slog.String("driver", NAME), slog.String("model", s.model.VisionModel))

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return s.complete(ctx, openai.ChatCompletionRequest{
		Model: s.model.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image.Data)),
						},
					},
				},
			},
		},
	})
}

func (s *Driver) Transcribe(ctx context.Context, audio ai.AudioInput) (*ai.TranscriptionResult, error) {
	model := s.model.TranscriptionModel
	if audio.TranslateMode {
		model = s.model.TranslationModel
	}
	slog.Debug("Transcribe", slog.String("driver", NAME), slog.String("model", model), slog.Bool("translate", audio.TranslateMode))

	req := openai.AudioRequest{
		Model:    model,
		FilePath: fmt.Sprintf("audio-%s.%s", uuid.NewString(), audio.Format),
		Reader:   bytes.NewReader(audio.Data),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	var (
		resp openai.AudioResponse
		err  error
	)
	if audio.TranslateMode {
		// translations always answer in english
		resp, err = s.client.CreateTranslation(ctx, req)
	} else {
		req.Language = audio.Language
		resp, err = s.client.CreateTranscription(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("Transcription error: %w", err)
	}

	language := audio.Language
	if language == "" {
		language = resp.Language
	}

	return &ai.TranscriptionResult{
		Text: strings.TrimSpace(resp.Text),
		Metadata: ai.TranscriptionMetadata{
			Format:   audio.Format,
			Duration: resp.Duration,
			Language: language,
		},
	}, nil
}
