package ai

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/quka-ai/moodjournal/pkg/utils"
)

const (
	MAX_AUDIO_SIZE = 25 * 1024 * 1024
	// 只在 data uri 的头部查找格式标识
	AUDIO_FORMAT_HEADER_LEN = 100
)

var SUPPORTED_AUDIO_FORMATS = []string{"mp3", "mp4", "mpeg", "mpga", "m4a", "wav", "webm"}

var (
	ErrAudioMissing     = errors.New("audio data is required")
	ErrAudioTooLarge    = fmt.Errorf("audio file must be less than %dMB", MAX_AUDIO_SIZE/(1024*1024))
	ErrAudioUnsupported = fmt.Errorf("audio format must be one of: %s", strings.Join(SUPPORTED_AUDIO_FORMATS, ", "))
)

type Audio struct {
	Format string
	Size   int
	Data   []byte
}

type TranscribeRequest struct {
	Audio         string `json:"audio" binding:"required"`
	Language      string `json:"language"`
	TranslateMode bool   `json:"translate_mode"`
}

type TranscriptionMetadata struct {
	Format   string  `json:"format"`
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

type TranscriptionResult struct {
	Text     string                `json:"text"`
	Metadata TranscriptionMetadata `json:"metadata"`
}

// ValidateAudio checks presence, size and format of a base64 (or data URI) audio payload.
// It never touches the network, callers run it before any transcription request.
func ValidateAudio(encoded string) (*Audio, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, ErrAudioMissing
	}

	uri := utils.ParseDataURI(encoded)
	if base64DecodedLen(uri.Payload) > MAX_AUDIO_SIZE {
		return nil, ErrAudioTooLarge
	}

	data, err := utils.DecodeBase64(uri.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAudioUnsupported, err.Error())
	}
	if len(data) == 0 {
		return nil, ErrAudioMissing
	}

	format := formatFromHeader(encoded, uri.MimeType)
	if format == "" {
		format = sniffAudioFormat(data)
	}
	if format == "" {
		return nil, ErrAudioUnsupported
	}

	return &Audio{
		Format: format,
		Size:   len(data),
		Data:   data,
	}, nil
}

func base64DecodedLen(payload string) int {
	n := len(payload)
	pad := 0
	for pad < 2 && n-pad > 0 && payload[n-1-pad] == '=' {
		pad++
	}
	return (n - pad) * 3 / 4
}

func formatFromHeader(encoded, mimeType string) string {
	if mimeType == "" {
		return ""
	}
	header, _, _ := strings.Cut(encoded[:min(len(encoded), AUDIO_FORMAT_HEADER_LEN)], ",")
	header = strings.ToLower(header)
	if f, ok := lo.Find(SUPPORTED_AUDIO_FORMATS, func(item string) bool {
		return strings.Contains(header, item)
	}); ok {
		return f
	}
	// audio/x-wav, audio/wave
	if strings.Contains(mimeType, "wav") {
		return "wav"
	}
	return ""
}

func sniffAudioFormat(data []byte) string {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x1a, 0x45, 0xdf, 0xa3}):
		return "webm"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "wav"
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return "mp3"
	case len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0:
		return "mp3"
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		if strings.HasPrefix(string(data[8:12]), "M4A") {
			return "m4a"
		}
		return "mp4"
	case len(data) >= 4 && bytes.Equal(data[:3], []byte{0x00, 0x00, 0x01}) && (data[3] == 0xba || data[3] == 0xb3):
		return "mpeg"
	}
	return ""
}
