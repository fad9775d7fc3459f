package srv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/ai/gemini"
	"github.com/quka-ai/moodjournal/pkg/ai/huggingface"
	"github.com/quka-ai/moodjournal/pkg/ai/ollama"
	"github.com/quka-ai/moodjournal/pkg/ai/openai"
	"github.com/quka-ai/moodjournal/pkg/mark"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

var ErrDriverUnavailable = errors.New("ai driver is not configured")

const (
	DRIVER_OPENAI = openai.NAME
	DRIVER_GEMINI = gemini.NAME
	DRIVER_OLLAMA = ollama.NAME
)

type AIConfig struct {
	HuggingFace HuggingFaceConfig `toml:"huggingface"`
	OpenAI      OpenAIConfig      `toml:"openai"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Ollama      OllamaConfig      `toml:"ollama"`
	Usage       AIUsage           `toml:"usage"`
}

type HuggingFaceConfig struct {
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

type OpenAIConfig struct {
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
	openai.ModelName
}

type GeminiConfig struct {
	Token string `toml:"token"`
	Model string `toml:"model"`
}

type OllamaConfig struct {
	Endpoint string `toml:"endpoint"`
	ollama.ModelName
}

// AIUsage 指定摘要与图片理解使用的驱动, openai, gemini 或 ollama
type AIUsage struct {
	Summary string `toml:"summary"`
	Vision  string `toml:"vision"`
}

func (c *AIConfig) FromENV() {
	c.HuggingFace.Token = os.Getenv("MOODJOURNAL_HUGGINGFACE_TOKEN")
	c.OpenAI.Token = os.Getenv("MOODJOURNAL_GROQ_TOKEN")
	c.OpenAI.Endpoint = os.Getenv("MOODJOURNAL_GROQ_ENDPOINT")
	c.Gemini.Token = os.Getenv("MOODJOURNAL_GEMINI_TOKEN")
	c.Ollama.Endpoint = os.Getenv("MOODJOURNAL_OLLAMA_ENDPOINT")
	c.Usage.Summary = os.Getenv("MOODJOURNAL_AI_USAGE_SUMMARY")
	c.Usage.Vision = os.Getenv("MOODJOURNAL_AI_USAGE_VISION")
}

// AIGateway 情绪分类, 摘要, 图片描述, 语音转写
type AIGateway interface {
	ClassifyEmotion(ctx context.Context, text string) ([]types.MoodScore, error)
	Summarize(ctx context.Context, content string) (string, error)
	DescribeImage(ctx context.Context, image ai.ImageInput) (string, error)
	Transcribe(ctx context.Context, req ai.TranscribeRequest) (*ai.TranscriptionResult, error)
}

type AIMetrics interface {
	AIRequestTimer(target string) *prometheus.Timer
	AIErrorInc(target string)
}

type AI struct {
	classifier  ai.EmotionClassifier
	generator   ai.Generator
	vision      ai.VisionDescriber
	transcriber ai.Transcriber
	metrics     AIMetrics
}

type AIOption func(s *AI)

func WithEmotionClassifier(d ai.EmotionClassifier) AIOption {
	return func(s *AI) { s.classifier = d }
}

func WithGenerator(d ai.Generator) AIOption {
	return func(s *AI) { s.generator = d }
}

func WithVision(d ai.VisionDescriber) AIOption {
	return func(s *AI) { s.vision = d }
}

func WithTranscriber(d ai.Transcriber) AIOption {
	return func(s *AI) { s.transcriber = d }
}

func WithAIMetrics(m AIMetrics) AIOption {
	return func(s *AI) { s.metrics = m }
}

func NewAI(opts ...AIOption) *AI {
	s := &AI{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupAI 根据配置创建驱动, 未配置 token 的驱动不会被创建
func SetupAI(cfg AIConfig, metrics AIMetrics) (*AI, error) {
	s := &AI{metrics: metrics}

	if cfg.HuggingFace.Token != "" {
		s.classifier = huggingface.New(cfg.HuggingFace.Token, cfg.HuggingFace.Endpoint, cfg.HuggingFace.Model)
	}

	var (
		oai *openai.Driver
		gem *gemini.Driver
	)
	if cfg.OpenAI.Token != "" {
		oai = openai.New(cfg.OpenAI.Token, cfg.OpenAI.Endpoint, cfg.OpenAI.ModelName)
		// whisper 只有 openai 兼容接口提供
		s.transcriber = oai
	}
	if cfg.Gemini.Token != "" {
		gem = gemini.New(cfg.Gemini.Token, cfg.Gemini.Model)
	}

	pick := func(usage string) (ai.Generator, ai.VisionDescriber, error) {
		switch strings.ToLower(usage) {
		case "", DRIVER_OPENAI:
			if oai == nil {
				return nil, nil, nil
			}
			return oai, oai, nil
		case DRIVER_GEMINI:
			if gem == nil {
				return nil, nil, nil
			}
			return gem, gem, nil
		case DRIVER_OLLAMA:
			d := ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.ModelName)
			return d, d, nil
		}
		return nil, nil, fmt.Errorf("unknown ai driver %s", usage)
	}

	gen, _, err := pick(cfg.Usage.Summary)
	if err != nil {
		return nil, err
	}
	_, vision, err := pick(cfg.Usage.Vision)
	if err != nil {
		return nil, err
	}
	// nil interface values must stay nil
	if gen != nil {
		s.generator = gen
	}
	if vision != nil {
		s.vision = vision
	}

	return s, nil
}

func (s *AI) observe(target string) func(err error) {
	if s.metrics == nil {
		return func(error) {}
	}
	timer := s.metrics.AIRequestTimer(target)
	return func(err error) {
		timer.ObserveDuration()
		if err != nil {
			s.metrics.AIErrorInc(target)
		}
	}
}

func (s *AI) ClassifyEmotion(ctx context.Context, text string) (res []types.MoodScore, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, ai.ErrEmptyContent
	}
	if s.classifier == nil {
		return nil, ErrDriverUnavailable
	}

	done := s.observe("classify_emotion")
	defer func() { done(err) }()

	return s.classifier.ClassifyEmotion(ctx, text)
}

// Summarize 摘要使用与日记内容相同的语言, $hidden[...] 片段不会发送给模型
func (s *AI) Summarize(ctx context.Context, content string) (summary string, err error) {
	if strings.TrimSpace(content) == "" {
		return "", ai.ErrEmptyContent
	}
	if s.generator == nil {
		return "", ErrDriverUnavailable
	}

	done := s.observe("summarize")
	defer func() { done(err) }()

	masker := mark.NewMasker()
	resp, err := s.generator.Generate(ctx, ai.BuildSummaryPrompt(masker.Mask(content), utils.WhatLang(mark.Strip(content))))
	if err != nil {
		return "", err
	}
	if resp.Usage != nil {
		slog.Debug("summarize usage", slog.String("model", resp.Model), slog.Int("total_tokens", resp.Usage.TotalTokens))
	}
	return masker.Unmask(resp.Text), nil
}

func (s *AI) DescribeImage(ctx context.Context, image ai.ImageInput) (desc string, err error) {
	if len(image.Data) == 0 {
		return "", ai.ErrEmptyContent
	}
	if s.vision == nil {
		return "", ErrDriverUnavailable
	}

	done := s.observe("describe_image")
	defer func() { done(err) }()

	resp, err := s.vision.DescribeImage(ctx, ai.PROMPT_DESCRIBE_IMAGE_EN, image)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Transcribe validates the payload before any upstream request is made.
func (s *AI) Transcribe(ctx context.Context, req ai.TranscribeRequest) (res *ai.TranscriptionResult, err error) {
	audio, err := ai.ValidateAudio(req.Audio)
	if err != nil {
		return nil, err
	}
	if s.transcriber == nil {
		return nil, ErrDriverUnavailable
	}

	done := s.observe("transcribe")
	defer func() { done(err) }()

	return s.transcriber.Transcribe(ctx, ai.AudioInput{
		Data:          audio.Data,
		Format:        audio.Format,
		Language:      req.Language,
		TranslateMode: req.TranslateMode,
	})
}

func (s *AI) Status() map[string]bool {
	return map[string]bool{
		"emotion":    s.classifier != nil,
		"summary":    s.generator != nil,
		"vision":     s.vision != nil,
		"transcribe": s.transcriber != nil,
	}
}
