package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/moodjournal/pkg/ai"
)

func TestDriver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))

		content := "A quiet evening."
		if req["model"] == DEFAULT_VISION_MODEL {
			assert.Contains(t, string(body), "data:image/jpeg;base64,")
			content = "A cat on a windowsill."
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "1",
			"model":   req["model"],
			"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	defer srv.Close()

	d := New(srv.URL, ModelName{})

	res, err := d.Generate(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "A quiet evening.", res.Text)
	assert.Nil(t, res.Usage)

	res, err = d.DescribeImage(context.Background(), ai.PROMPT_DESCRIBE_IMAGE_EN, ai.ImageInput{Data: []byte("jpg")})
	require.NoError(t, err)
	assert.Equal(t, "A cat on a windowsill.", res.Text)
	assert.Equal(t, DEFAULT_VISION_MODEL, res.Model)
}
