package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type JournalEntryResponse struct {
	*types.JournalEntry
	Moods []types.MoodScore `json:"moods"`
}

func wrapEntry(entry *types.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		JournalEntry: entry,
		Moods:        entry.MoodScores.Display(),
	}
}

type CreateJournalRequest struct {
	Title    string        `json:"title" binding:"required"`
	Content  string        `json:"content" binding:"required"`
	Date     string        `json:"date" binding:"omitempty,journaldate"`
	Keywords types.RawJSON `json:"keywords"`
}

func (s *HttpSrv) CreateJournal(c *gin.Context) {
	var (
		err error
		req CreateJournalRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	entry, err := v1.NewJournalLogic(c, s.Core).CreateEntry(req.Title, req.Content, req.Date, req.Keywords)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wrapEntry(entry))
}

func (s *HttpSrv) GetJournal(c *gin.Context) {
	entry, err := v1.NewJournalLogic(c, s.Core).GetEntry(c.Param("id"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wrapEntry(entry))
}

type ListJournalRequest struct {
	Emotion string `form:"emotion"`
	Sort    string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

type ListJournalResponse struct {
	List     []JournalEntryResponse `json:"list"`
	Emotions []string               `json:"emotions"`
	Emotion  string                 `json:"emotion"`
	Sort     string                 `json:"sort"`
	Editing  string                 `json:"editing,omitempty"`
	Total    int                    `json:"total"`
}

func (s *HttpSrv) ListJournal(c *gin.Context) {
	var (
		err error
		req ListJournalRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewJournalLogic(c, s.Core).ListEntries(req.Emotion, req.Sort)
	if err != nil {
		response.APIError(c, err)
		return
	}

	list := make([]JournalEntryResponse, 0, len(res.Entries))
	for _, v := range res.Entries {
		list = append(list, wrapEntry(v))
	}
	response.APISuccess(c, ListJournalResponse{
		List:     list,
		Emotions: res.Emotions,
		Emotion:  res.Emotion,
		Sort:     string(res.Sort),
		Editing:  res.Editing,
		Total:    res.Total,
	})
}

func (s *HttpSrv) ListJournalEmotions(c *gin.Context) {
	list, err := v1.NewJournalLogic(c, s.Core).Emotions()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type UpdateJournalRequest struct {
	types.JournalEntryPatch
	ForceReevaluate bool `json:"force_reevaluate"`
}

func (s *HttpSrv) UpdateJournal(c *gin.Context) {
	var (
		err error
		req UpdateJournalRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	entry, err := v1.NewJournalLogic(c, s.Core).UpdateEntry(c.Param("id"), req.JournalEntryPatch, req.ForceReevaluate)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wrapEntry(entry))
}

func (s *HttpSrv) DeleteJournal(c *gin.Context) {
	if err := v1.NewJournalLogic(c, s.Core).DeleteEntry(c.Param("id")); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) BeginEditJournal(c *gin.Context) {
	entry, err := v1.NewJournalLogic(c, s.Core).BeginEdit(c.Param("id"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wrapEntry(entry))
}

func (s *HttpSrv) CancelEditJournal(c *gin.Context) {
	v1.NewJournalLogic(c, s.Core).CancelEdit()
	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetJournalSummary(c *gin.Context) {
	summary, err := v1.NewJournalLogic(c, s.Core).Summary(c.Param("id"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"summary": summary})
}

type AttachImageRequest struct {
	Image string `json:"image" binding:"required"`
}

func (s *HttpSrv) AttachJournalImage(c *gin.Context) {
	var (
		err error
		req AttachImageRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	entry, err := v1.NewJournalLogic(c, s.Core).AttachImage(c.Param("id"), req.Image)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, wrapEntry(entry))
}
