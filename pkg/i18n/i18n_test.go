package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLang(t *testing.T) {
	l := NewLocalizer("zh-CN", "en")

	assert.Equal(t, "The audio is larger than 25MB", l.Get("en", ERROR_AUDIO_TOO_LARGE))
	assert.Equal(t, "音频大小超过 25MB", l.Get("zh-CN", ERROR_AUDIO_TOO_LARGE))
	// unknown language falls back to english
	assert.Equal(t, "The audio is larger than 25MB", l.Get("fr", ERROR_AUDIO_TOO_LARGE))
	assert.Equal(t, "error.unknown.id", l.Get("en", "error.unknown.id"))
}

func TestAllMessagesTranslated(t *testing.T) {
	l := NewLocalizer("zh-CN", "en")
	for _, id := range []string{ERROR_INTERNAL, ERROR_NOT_FOUND, ERROR_JOURNAL_DATE_EXIST, ERROR_AUDIO_UNSUPPORTED, ERROR_AI_UPSTREAM, ERROR_RECORDING_IN_USE} {
		for lang := range ALLOW_LANG {
			assert.NotEqual(t, id, l.Get(lang, id), "%s missing in %s", id, lang)
		}
	}
}
