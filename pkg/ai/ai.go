package ai

import (
	"context"
	"errors"

	"github.com/quka-ai/moodjournal/pkg/types"
)

const (
	MODEL_BASE_LANGUAGE_EN = "English"
)

var (
	ErrEmptyContent  = errors.New("content is empty")
	ErrEmptyResponse = errors.New("empty response content")
)

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerateResponse struct {
	Text  string
	Model string
	Usage *Usage
}

// EmotionClassifier returns one score per emotion label for the given text.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, text string) ([]types.MoodScore, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerateResponse, error)
}

type ImageInput struct {
	MimeType string
	Data     []byte
}

type VisionDescriber interface {
	DescribeImage(ctx context.Context, prompt string, image ImageInput) (GenerateResponse, error)
}

type AudioInput struct {
	Data          []byte
	Format        string
	Language      string
	TranslateMode bool
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio AudioInput) (*TranscriptionResult, error)
}
