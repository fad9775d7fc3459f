package huggingface

// provider for https://huggingface.co/inference-api
// - text emotion classification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/types"
)

const (
	NAME = "huggingface"

	DEFAULT_ENDPOINT      = "https://api-inference.huggingface.co/models/"
	DEFAULT_EMOTION_MODEL = "j-hartmann/emotion-english-distilroberta-base"
)

type Driver struct {
	client   *http.Client
	token    string
	endpoint string
	model    string
}

func New(token, endpoint, model string) *Driver {
	if endpoint == "" {
		endpoint = DEFAULT_ENDPOINT
	}
	if model == "" {
		model = DEFAULT_EMOTION_MODEL
	}
	return &Driver{
		client:   &http.Client{Timeout: time.Minute},
		token:    token,
		endpoint: strings.TrimSuffix(endpoint, "/") + "/",
		model:    model,
	}
}

func (s *Driver) applyBaseHeader(req *http.Request) {
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	if s.token != "" {
		req.Header.Add("Authorization", "Bearer "+s.token)
	}
}

type ClassifyRequestBody struct {
	Inputs string `json:"inputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ClassifyEmotion returns the label list of the classifier, which responds with [[{label, score}]].
func (s *Driver) ClassifyEmotion(ctx context.Context, text string) ([]types.MoodScore, error) {
	slog.Debug("ClassifyEmotion", slog.String("driver", NAME), slog.String("model", s.model))

	if strings.TrimSpace(text) == "" {
		return nil, ai.ErrEmptyContent
	}

	raw, _ := json.Marshal(ClassifyRequestBody{Inputs: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+s.model, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	s.applyBaseHeader(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to request huggingface inference: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("Failed to request huggingface inference, %s: %s", resp.Status, e.Error)
		}
		return nil, fmt.Errorf("Failed to request huggingface inference, %s", resp.Status)
	}

	return parseClassification(body)
}

func parseClassification(body []byte) ([]types.MoodScore, error) {
	var nested [][]types.MoodScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, ai.ErrEmptyResponse
		}
		return nested[0], nil
	}

	// some deployments drop the outer batch dimension
	var flat []types.MoodScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal response, %w", err)
	}
	if len(flat) == 0 {
		return nil, ai.ErrEmptyResponse
	}
	return flat, nil
}
