package ai

import (
	"bytes"
	"errors"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	ErrRecordingInUse  = errors.New("a recording is already in progress")
	ErrNotRecording    = errors.New("no recording in progress")
	ErrRecorderBlocked = errors.New("recording device is not available")
)

// Recording is the assembled audio of a stopped session.
type Recording struct {
	Format   string
	Data     []byte
	Duration time.Duration
}

// Recorder buffers audio chunks for a single capture session.
// The release func passed to Start is always invoked exactly once, on Stop or Cancel.
type Recorder struct {
	mu        sync.Mutex
	active    bool
	format    string
	buf       bytes.Buffer
	startedAt time.Time
	release   func()
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(format string, release func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrRecordingInUse
	}
	r.active = true
	r.format = format
	r.buf.Reset()
	r.startedAt = time.Now()
	r.release = release
	return nil
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Append adds a chunk to the current session, the session is kept when the size limit is hit.
func (r *Recorder) Append(chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return ErrNotRecording
	}
	if r.buf.Len()+len(chunk) > MAX_AUDIO_SIZE {
		return ErrAudioTooLarge
	}
	r.buf.Write(chunk)
	return nil
}

func (r *Recorder) Stop() (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return nil, ErrNotRecording
	}

	rec := &Recording{
		Format:   r.format,
		Data:     bytes.Clone(r.buf.Bytes()),
		Duration: time.Since(r.startedAt),
	}
	r.reset()
	return rec, nil
}

// Cancel drops the buffered audio and releases the device, it is a no-op when idle.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		r.reset()
	}
}

// expire cancels the session when it has been running longer than maxAge.
func (r *Recorder) expire(maxAge time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || time.Since(r.startedAt) <= maxAge {
		return false
	}
	r.reset()
	return true
}

func (r *Recorder) reset() {
	release := r.release
	r.active = false
	r.release = nil
	r.buf.Reset()
	if release != nil {
		release()
	}
}

// RecorderRegistry holds one recorder per owner.
type RecorderRegistry struct {
	recorders cmap.ConcurrentMap[string, *Recorder]
}

func NewRecorderRegistry() *RecorderRegistry {
	return &RecorderRegistry{
		recorders: cmap.New[*Recorder](),
	}
}

func (r *RecorderRegistry) Get(owner string) *Recorder {
	return r.recorders.Upsert(owner, nil, func(exist bool, rec *Recorder, _ *Recorder) *Recorder {
		if exist {
			return rec
		}
		return NewRecorder()
	})
}

// Sweep cancels sessions older than maxAge, returns how many were dropped.
func (r *RecorderRegistry) Sweep(maxAge time.Duration) int {
	dropped := 0
	for item := range r.recorders.IterBuffered() {
		if item.Val.expire(maxAge) {
			dropped++
		}
	}
	return dropped
}
