package srv

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/mark"
	"github.com/quka-ai/moodjournal/pkg/types"
)

type fakeClassifier struct {
	calls  int
	scores []types.MoodScore
	err    error
}

func (f *fakeClassifier) ClassifyEmotion(ctx context.Context, text string) ([]types.MoodScore, error) {
	f.calls++
	return f.scores, f.err
}

type fakeGenerator struct {
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	f.prompt = prompt
	return ai.GenerateResponse{Text: "a calm day", Model: "fake"}, nil
}

type fakeTranscriber struct {
	calls int
	input ai.AudioInput
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio ai.AudioInput) (*ai.TranscriptionResult, error) {
	f.calls++
	f.input = audio
	return &ai.TranscriptionResult{Text: "hello"}, nil
}

func TestSetupAI_WithoutTokens(t *testing.T) {
	a, err := SetupAI(AIConfig{}, nil)
	require.NoError(t, err)

	for name, ok := range a.Status() {
		assert.False(t, ok, name)
	}

	_, err = a.ClassifyEmotion(context.Background(), "today was fine")
	assert.ErrorIs(t, err, ErrDriverUnavailable)
}

func TestSetupAI_UnknownDriver(t *testing.T) {
	_, err := SetupAI(AIConfig{Usage: AIUsage{Summary: "nope"}}, nil)
	assert.Error(t, err)
}

func TestSetupAI_Drivers(t *testing.T) {
	a, err := SetupAI(AIConfig{
		HuggingFace: HuggingFaceConfig{Token: "hf"},
		OpenAI:      OpenAIConfig{Token: "groq"},
	}, nil)
	require.NoError(t, err)

	status := a.Status()
	assert.True(t, status["emotion"])
	assert.True(t, status["summary"])
	assert.True(t, status["vision"])
	assert.True(t, status["transcribe"])
}

func TestSetupAI_Ollama(t *testing.T) {
	a, err := SetupAI(AIConfig{Usage: AIUsage{Summary: DRIVER_OLLAMA, Vision: "OLLAMA"}}, nil)
	require.NoError(t, err)

	status := a.Status()
	assert.True(t, status["summary"])
	assert.True(t, status["vision"])
	assert.False(t, status["transcribe"])
}

func TestClassifyEmotion(t *testing.T) {
	classifier := &fakeClassifier{scores: []types.MoodScore{{Label: "joy", Score: 0.9}}}
	a := NewAI(WithEmotionClassifier(classifier))

	res, err := a.ClassifyEmotion(context.Background(), "sunny")
	require.NoError(t, err)
	assert.Equal(t, "joy", res[0].Label)

	_, err = a.ClassifyEmotion(context.Background(), "   ")
	assert.ErrorIs(t, err, ai.ErrEmptyContent)
	assert.Equal(t, 1, classifier.calls)

	classifier.err = errors.New("boom")
	_, err = a.ClassifyEmotion(context.Background(), "rain")
	assert.Error(t, err)
}

func TestSummarize_UsesContentLanguage(t *testing.T) {
	gen := &fakeGenerator{}
	a := NewAI(WithGenerator(gen))

	summary, err := a.Summarize(context.Background(), "I walked along the river and felt grateful for the quiet morning.")
	require.NoError(t, err)
	assert.Equal(t, "a calm day", summary)
	assert.Contains(t, gen.prompt, "English")
	assert.Contains(t, gen.prompt, "grateful")
}

type echoGenerator struct {
	prompt string
}

func (f *echoGenerator) Generate(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	f.prompt = prompt
	return ai.GenerateResponse{Text: "Met " + mark.HiddenRegexp.FindString(prompt) + " for coffee."}, nil
}

func TestSummarize_MasksHiddenSpans(t *testing.T) {
	gen := &echoGenerator{}
	a := NewAI(WithGenerator(gen))

	summary, err := a.Summarize(context.Background(), "I met $hidden[Anna Park] for coffee and we talked about the move.")
	require.NoError(t, err)
	assert.NotContains(t, gen.prompt, "Anna")
	assert.Equal(t, "Met $hidden[Anna Park] for coffee.", summary)
}

func TestTranscribe_ValidatesBeforeUpstream(t *testing.T) {
	tr := &fakeTranscriber{}
	a := NewAI(WithTranscriber(tr))

	_, err := a.Transcribe(context.Background(), ai.TranscribeRequest{})
	assert.ErrorIs(t, err, ai.ErrAudioMissing)

	huge := strings.Repeat("A", (ai.MAX_AUDIO_SIZE/3)*4+8)
	_, err = a.Transcribe(context.Background(), ai.TranscribeRequest{Audio: huge})
	assert.ErrorIs(t, err, ai.ErrAudioTooLarge)

	_, err = a.Transcribe(context.Background(), ai.TranscribeRequest{Audio: base64.StdEncoding.EncodeToString([]byte("plain text"))})
	assert.ErrorIs(t, err, ai.ErrAudioUnsupported)

	assert.Equal(t, 0, tr.calls)

	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 16)...)
	res, err := a.Transcribe(context.Background(), ai.TranscribeRequest{
		Audio:         "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav),
		TranslateMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "wav", tr.input.Format)
	assert.True(t, tr.input.TranslateMode)
	assert.Equal(t, 1, tr.calls)
}
