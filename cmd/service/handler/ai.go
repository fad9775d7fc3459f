package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *HttpSrv) ClassifyEmotion(c *gin.Context) {
	var (
		err error
		req TextRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewAILogic(c, s.Core).ClassifyEmotion(req.Text)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": res})
}

func (s *HttpSrv) Summarize(c *gin.Context) {
	var (
		err error
		req TextRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewAILogic(c, s.Core).Summarize(req.Text)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"summary": res})
}

type DescribeImageRequest struct {
	Image string `json:"image" binding:"required"`
}

func (s *HttpSrv) DescribeImage(c *gin.Context) {
	var (
		err error
		req DescribeImageRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewAILogic(c, s.Core).DescribeImage(req.Image)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"description": res})
}

func (s *HttpSrv) Transcribe(c *gin.Context) {
	var (
		err error
		req ai.TranscribeRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewAILogic(c, s.Core).Transcribe(req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) GetAIStatus(c *gin.Context) {
	response.APISuccess(c, s.Core.GetAIStatus())
}
