package ai

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func webmBytes() []byte {
	return append([]byte{0x1a, 0x45, 0xdf, 0xa3}, []byte("webm-body")...)
}

func TestValidateAudio(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := ValidateAudio("")
		assert.ErrorIs(t, err, ErrAudioMissing)
	})

	t.Run("too large", func(t *testing.T) {
		size := 26 * 1024 * 1024
		payload := "data:audio/webm;base64," + strings.Repeat("A", size/3*4)
		_, err := ValidateAudio(payload)
		assert.ErrorIs(t, err, ErrAudioTooLarge)
	})

	t.Run("data uri header", func(t *testing.T) {
		audio, err := ValidateAudio("data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString([]byte("anything")))
		assert.NoError(t, err)
		assert.Equal(t, "mpeg", audio.Format)
		assert.Equal(t, 8, audio.Size)
	})

	t.Run("codecs suffix", func(t *testing.T) {
		audio, err := ValidateAudio("data:audio/webm;codecs=opus;base64," + base64.StdEncoding.EncodeToString(webmBytes()))
		assert.NoError(t, err)
		assert.Equal(t, "webm", audio.Format)
	})

	t.Run("sniffed", func(t *testing.T) {
		audio, err := ValidateAudio(base64.StdEncoding.EncodeToString(webmBytes()))
		assert.NoError(t, err)
		assert.Equal(t, "webm", audio.Format)

		wav := append([]byte("RIFF\x00\x00\x00\x00WAVE"), []byte("fmt ")...)
		audio, err = ValidateAudio(base64.StdEncoding.EncodeToString(wav))
		assert.NoError(t, err)
		assert.Equal(t, "wav", audio.Format)

		m4a := []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00")
		audio, err = ValidateAudio(base64.StdEncoding.EncodeToString(m4a))
		assert.NoError(t, err)
		assert.Equal(t, "m4a", audio.Format)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := ValidateAudio("data:audio/ogg;base64," + base64.StdEncoding.EncodeToString([]byte("OggS\x00\x02")))
		assert.ErrorIs(t, err, ErrAudioUnsupported)

		_, err = ValidateAudio(base64.StdEncoding.EncodeToString([]byte("plain text")))
		assert.ErrorIs(t, err, ErrAudioUnsupported)
	})
}

func TestBase64DecodedLen(t *testing.T) {
	for _, raw := range []string{"", "a", "ab", "abc", "abcd", "abcde"} {
		assert.Equal(t, len(raw), base64DecodedLen(base64.StdEncoding.EncodeToString([]byte(raw))), raw)
		assert.Equal(t, len(raw), base64DecodedLen(base64.RawStdEncoding.EncodeToString([]byte(raw))), raw)
	}
}
