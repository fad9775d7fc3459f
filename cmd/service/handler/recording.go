package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type StartRecordingRequest struct {
	Format string `json:"format" form:"format"`
}

func (s *HttpSrv) StartRecording(c *gin.Context) {
	var (
		err error
		req StartRecordingRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewRecordingLogic(c, s.Core).StartRecording(req.Format); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

// AppendRecording 请求体为原始音频分片
func (s *HttpSrv) AppendRecording(c *gin.Context) {
	chunk, err := io.ReadAll(io.LimitReader(c.Request.Body, ai.MAX_AUDIO_SIZE+1))
	if err != nil {
		response.APIError(c, errors.New("api.AppendRecording.ReadAll", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	if err = v1.NewRecordingLogic(c, s.Core).AppendRecording(chunk); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type StopRecordingRequest struct {
	Transcribe    bool   `form:"transcribe"`
	TranslateMode bool   `form:"translate_mode"`
	Language      string `form:"language"`
	Cancel        bool   `form:"cancel"`
}

func (s *HttpSrv) StopRecording(c *gin.Context) {
	var (
		err error
		req StopRecordingRequest
	)
	if err = c.ShouldBindQuery(&req); err != nil {
		response.APIError(c, errors.New("api.StopRecording.ShouldBindQuery", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	logic := v1.NewRecordingLogic(c, s.Core)
	if req.Cancel {
		logic.CancelRecording()
		response.APISuccess(c, nil)
		return
	}

	res, err := logic.StopRecording(req.Transcribe, req.TranslateMode, req.Language)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) RecordingStatus(c *gin.Context) {
	response.APISuccess(c, gin.H{"recording": v1.NewRecordingLogic(c, s.Core).IsRecording()})
}
