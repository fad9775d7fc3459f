package v1

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
)

const DEFAULT_RECORDING_FORMAT = "webm"

type RecordingLogic struct {
	UserInfo
	ctx context.Context
	*backend
}

func NewRecordingLogic(ctx context.Context, core *core.Core) *RecordingLogic {
	return &RecordingLogic{
		ctx:      ctx,
		UserInfo: SetupUserInfo(ctx),
		backend:  newBackend(core),
	}
}

func recordingError(trace string, err error) error {
	switch {
	case errors.Is(err, ai.ErrRecordingInUse), errors.Is(err, ai.ErrRecorderBlocked):
		return errors.New(trace, i18n.ERROR_RECORDING_IN_USE, err).Code(http.StatusConflict)
	case errors.Is(err, ai.ErrNotRecording):
		return errors.New(trace, i18n.ERROR_RECORDING_NOT_FOUND, err).Code(http.StatusNotFound)
	case errors.Is(err, ai.ErrAudioTooLarge):
		return errors.New(trace, i18n.ERROR_AUDIO_TOO_LARGE, err).Code(http.StatusBadRequest)
	}
	return errors.New(trace, i18n.ERROR_INTERNAL, err)
}

// StartRecording 占用用户的录音设备, 同一用户同一时间只能有一个录音
func (l *RecordingLogic) StartRecording(format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = DEFAULT_RECORDING_FORMAT
	}
	if !lo.Contains(ai.SUPPORTED_AUDIO_FORMATS, format) {
		return errors.New("RecordingLogic.StartRecording.format", i18n.ERROR_AUDIO_UNSUPPORTED, ai.ErrAudioUnsupported).Code(http.StatusBadRequest)
	}

	userID := l.GetUserInfo().User
	sem := l.semaphore(userID)
	if !sem.TryAcquire(l.ctx) {
		return recordingError("RecordingLogic.StartRecording.TryAcquire", ai.ErrRecorderBlocked)
	}

	release := func() {
		sem.Release(context.Background())
		if l.metrics != nil {
			l.metrics.RecordingStopped()
		}
	}
	if err := l.recorders.Get(userID).Start(format, release); err != nil {
		sem.Release(context.Background())
		return recordingError("RecordingLogic.StartRecording.Start", err)
	}

	if l.metrics != nil {
		l.metrics.RecordingStarted()
	}
	return nil
}

func (l *RecordingLogic) AppendRecording(chunk []byte) error {
	if len(chunk) == 0 {
		return errors.New("RecordingLogic.AppendRecording.empty", i18n.ERROR_AUDIO_MISSING, ai.ErrAudioMissing).Code(http.StatusBadRequest)
	}
	if err := l.recorders.Get(l.GetUserInfo().User).Append(chunk); err != nil {
		return recordingError("RecordingLogic.AppendRecording", err)
	}
	return nil
}

type RecordingResult struct {
	Format        string                  `json:"format"`
	Size          int                     `json:"size"`
	Duration      float64                 `json:"duration"`
	Audio         string                  `json:"audio,omitempty"`
	Transcription *ai.TranscriptionResult `json:"transcription,omitempty"`
}

// StopRecording 结束录音并释放设备, transcribe 为 true 时返回转写结果而不是音频
func (l *RecordingLogic) StopRecording(transcribe, translateMode bool, language string) (*RecordingResult, error) {
	rec, err := l.recorders.Get(l.GetUserInfo().User).Stop()
	if err != nil {
		return nil, recordingError("RecordingLogic.StopRecording", err)
	}
	if len(rec.Data) == 0 {
		return nil, errors.New("RecordingLogic.StopRecording.empty", i18n.ERROR_AUDIO_MISSING, ai.ErrAudioMissing).Code(http.StatusBadRequest)
	}

	encoded := fmt.Sprintf("data:audio/%s;base64,%s", rec.Format, base64.StdEncoding.EncodeToString(rec.Data))
	result := &RecordingResult{
		Format:   rec.Format,
		Size:     len(rec.Data),
		Duration: rec.Duration.Seconds(),
	}

	if !transcribe {
		result.Audio = encoded
		return result, nil
	}

	res, err := l.ai.Transcribe(l.ctx, ai.TranscribeRequest{
		Audio:         encoded,
		Language:      language,
		TranslateMode: translateMode,
	})
	if err != nil {
		return nil, aiError("RecordingLogic.StopRecording.Transcribe", err)
	}
	result.Transcription = res
	return result, nil
}

func (l *RecordingLogic) CancelRecording() {
	l.recorders.Get(l.GetUserInfo().User).Cancel()
}

func (l *RecordingLogic) IsRecording() bool {
	return l.recorders.Get(l.GetUserInfo().User).Recording()
}
