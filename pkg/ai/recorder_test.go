package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	released := 0
	release := func() { released++ }

	assert.ErrorIs(t, rec.Append([]byte("x")), ErrNotRecording)

	assert.NoError(t, rec.Start("webm", release))
	assert.ErrorIs(t, rec.Start("webm", release), ErrRecordingInUse)
	assert.True(t, rec.Recording())

	assert.NoError(t, rec.Append([]byte("hello ")))
	assert.NoError(t, rec.Append([]byte("world")))

	res, err := rec.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(res.Data))
	assert.Equal(t, "webm", res.Format)
	assert.Equal(t, 1, released)
	assert.False(t, rec.Recording())

	_, err = rec.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.Equal(t, 1, released)
}

func TestRecorderLimitKeepsSession(t *testing.T) {
	rec := NewRecorder()
	released := false
	assert.NoError(t, rec.Start("wav", func() { released = true }))

	assert.ErrorIs(t, rec.Append(make([]byte, MAX_AUDIO_SIZE+1)), ErrAudioTooLarge)
	assert.True(t, rec.Recording())

	rec.Cancel()
	assert.True(t, released)
	assert.False(t, rec.Recording())
}

func TestRecorderRegistrySweep(t *testing.T) {
	reg := NewRecorderRegistry()
	released := false
	assert.NoError(t, reg.Get("u1").Start("webm", func() { released = true }))
	assert.Same(t, reg.Get("u1"), reg.Get("u1"))

	assert.Equal(t, 0, reg.Sweep(time.Hour))
	assert.Equal(t, 1, reg.Sweep(0))
	assert.True(t, released)
	assert.False(t, reg.Get("u1").Recording())
}
