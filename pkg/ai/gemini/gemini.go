package gemini

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quka-ai/moodjournal/pkg/ai"
)

const (
	NAME = "gemini"

	DEFAULT_MODEL = "gemini-1.5-flash"
)

type Driver struct {
	client *genai.Client
	model  string
}

func New(token, model string) *Driver {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(token))
	if err != nil {
		panic(err)
	}

	if model == "" {
		model = DEFAULT_MODEL
	}

	return &Driver{
		client: client,
		model:  model,
	}
}

func (s *Driver) Close() error {
	return s.client.Close()
}

func (s *Driver) generate(ctx context.Context, parts ...genai.Part) (ai.GenerateResponse, error) {
	result := ai.GenerateResponse{Model: s.model}

	resp, err := s.client.GenerativeModel(s.model).GenerateContent(ctx, parts...)
	if err != nil {
		return result, err
	}

	text, err := collectText(resp)
	if err != nil {
		return result, err
	}
	result.Text = text

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ai.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop {
		slog.Warn("Generate, ai finished without stop", slog.String("driver", NAME), slog.String("reason", candidate.FinishReason.String()))
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

func (s *Driver) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", s.model))
	return s.generate(ctx, genai.Text(prompt))
}

func (s *Driver) DescribeImage(ctx context.Context, prompt string, image ai.ImageInput) (ai.GenerateResponse, error) {
	slog.Debug("DescribeImage", slog.String("driver", NAME), slog.String("model", s.model))

	format := strings.TrimPrefix(image.MimeType, "image/")
	if format == "" {
		format = "jpeg"
	}
	return s.generate(ctx, genai.ImageData(format, image.Data), genai.Text(prompt))
}
