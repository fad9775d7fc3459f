package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/app/core/srv"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

// aiError 将 AI 调用的错误转换为对外的错误码, 校验类错误为 400, 上游错误为 502
func aiError(trace string, err error) error {
	switch {
	case errors.Is(err, ai.ErrEmptyContent):
		return errors.New(trace, i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	case errors.Is(err, ai.ErrAudioMissing):
		return errors.New(trace, i18n.ERROR_AUDIO_MISSING, err).Code(http.StatusBadRequest)
	case errors.Is(err, ai.ErrAudioTooLarge):
		return errors.New(trace, i18n.ERROR_AUDIO_TOO_LARGE, err).Code(http.StatusBadRequest)
	case errors.Is(err, ai.ErrAudioUnsupported):
		return errors.New(trace, i18n.ERROR_AUDIO_UNSUPPORTED, err).Code(http.StatusBadRequest)
	case errors.Is(err, srv.ErrDriverUnavailable):
		return errors.New(trace, i18n.ERROR_AI_UNAVAILABLE, err).Code(http.StatusServiceUnavailable)
	}
	return errors.New(trace, i18n.ERROR_AI_UPSTREAM, err).Code(http.StatusBadGateway)
}

type AILogic struct {
	UserInfo
	ctx context.Context
	*backend
}

func NewAILogic(ctx context.Context, core *core.Core) *AILogic {
	return &AILogic{
		ctx:      ctx,
		UserInfo: SetupUserInfo(ctx),
		backend:  newBackend(core),
	}
}

func (l *AILogic) ClassifyEmotion(text string) ([]types.MoodScore, error) {
	res, err := l.ai.ClassifyEmotion(l.ctx, text)
	if err != nil {
		return nil, aiError("AILogic.ClassifyEmotion", err)
	}
	return res, nil
}

func (l *AILogic) Summarize(text string) (string, error) {
	res, err := l.ai.Summarize(l.ctx, text)
	if err != nil {
		return "", aiError("AILogic.Summarize", err)
	}
	return res, nil
}

// DescribeImage 支持纯 base64 或 data uri, 未带类型时按 jpeg 处理
func (l *AILogic) DescribeImage(image string) (string, error) {
	input, err := parseImageInput(image)
	if err != nil {
		return "", errors.Trace("AILogic.DescribeImage", err)
	}

	res, err := l.ai.DescribeImage(l.ctx, input)
	if err != nil {
		return "", aiError("AILogic.DescribeImage", err)
	}
	return res, nil
}

func (l *AILogic) Transcribe(req ai.TranscribeRequest) (*ai.TranscriptionResult, error) {
	res, err := l.ai.Transcribe(l.ctx, req)
	if err != nil {
		return nil, aiError("AILogic.Transcribe", err)
	}
	return res, nil
}

func parseImageInput(image string) (ai.ImageInput, error) {
	if strings.TrimSpace(image) == "" {
		return ai.ImageInput{}, errors.New("parseImageInput.empty", i18n.ERROR_INVALIDARGUMENT, ai.ErrEmptyContent).Code(http.StatusBadRequest)
	}

	uri := utils.ParseDataURI(image)
	data, err := utils.DecodeBase64(uri.Payload)
	if err != nil || len(data) == 0 {
		return ai.ImageInput{}, errors.New("parseImageInput.DecodeBase64", i18n.ERROR_IMAGE_READ_FAIL, err).Code(http.StatusBadRequest)
	}

	mimeType := uri.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if !utils.IsValidImageType(mimeType) {
		return ai.ImageInput{}, errors.New("parseImageInput.IsValidImageType", i18n.ERROR_IMAGE_READ_FAIL, nil).Code(http.StatusBadRequest)
	}

	return ai.ImageInput{
		MimeType: mimeType,
		Data:     data,
	}, nil
}
