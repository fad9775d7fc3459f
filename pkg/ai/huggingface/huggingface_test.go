package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quka-ai/moodjournal/pkg/ai"
)

func TestClassifyEmotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DEFAULT_EMOTION_MODEL, r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body ClassifyRequestBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I had a great day", body.Inputs)

		w.Write([]byte(`[[{"label":"joy","score":0.91},{"label":"neutral","score":0.05},{"label":"sadness","score":0.04}]]`))
	}))
	defer srv.Close()

	d := New("token", srv.URL+"/models", "")
	res, err := d.ClassifyEmotion(context.Background(), "I had a great day")
	assert.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, "joy", res[0].Label)
	assert.Equal(t, 0.91, res[0].Score)
}

func TestClassifyEmotionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	d := New("token", srv.URL, "")
	_, err := d.ClassifyEmotion(context.Background(), "hello")
	assert.ErrorContains(t, err, "Model is currently loading")

	_, err = d.ClassifyEmotion(context.Background(), "  ")
	assert.ErrorIs(t, err, ai.ErrEmptyContent)
}

func TestParseClassification(t *testing.T) {
	res, err := parseClassification([]byte(`[{"label":"anger","score":0.5}]`))
	assert.NoError(t, err)
	assert.Equal(t, "anger", res[0].Label)

	_, err = parseClassification([]byte(`[[]]`))
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)

	_, err = parseClassification([]byte(`{"oops":1}`))
	assert.Error(t, err)
}
