package v1

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/errors"
	"github.com/quka-ai/moodjournal/pkg/i18n"
	"github.com/quka-ai/moodjournal/pkg/journal"
	"github.com/quka-ai/moodjournal/pkg/sqlstore"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

type JournalLogic struct {
	UserInfo
	ctx context.Context
	*backend
}

func NewJournalLogic(ctx context.Context, core *core.Core) *JournalLogic {
	return &JournalLogic{
		ctx:      ctx,
		UserInfo: SetupUserInfo(ctx),
		backend:  newBackend(core),
	}
}

func (l *JournalLogic) board() *journal.Board {
	return l.boards.Get(l.GetUserInfo().User)
}

func checkNotBlank(trace string, values ...*string) error {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) == "" {
			return errors.New(trace, i18n.ERROR_JOURNAL_EMPTY, nil).Code(http.StatusBadRequest)
		}
	}
	return nil
}

// CreateEntry 创建日记, 情绪分类失败时不会写入
func (l *JournalLogic) CreateEntry(title, content, date string, keywords types.RawJSON) (*types.JournalEntry, error) {
	userID := l.GetUserInfo().User
	if err := checkNotBlank("JournalLogic.CreateEntry.check", &title, &content); err != nil {
		return nil, err
	}

	if date == "" {
		date = l.now().Format(types.JOURNAL_DATE_LAYOUT)
	}
	if !types.IsJournalDate(date) {
		return nil, errors.New("JournalLogic.CreateEntry.IsJournalDate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	exist, err := l.journals.GetByDate(l.ctx, userID, date)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("JournalLogic.CreateEntry.JournalStore.GetByDate", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("JournalLogic.CreateEntry.JournalStore.GetByDate.exist", i18n.ERROR_JOURNAL_DATE_EXIST, nil).Code(http.StatusConflict)
	}

	scores, err := l.ai.ClassifyEmotion(l.ctx, content)
	if err != nil {
		return nil, aiError("JournalLogic.CreateEntry.ClassifyEmotion", err)
	}

	now := l.now().Unix()
	entry := &types.JournalEntry{
		ID:         utils.GenUniqIDStr(),
		UserID:     userID,
		Title:      title,
		Content:    content,
		Date:       date,
		Keywords:   keywords,
		MoodScores: types.WrapMoodScores(scores),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = l.journals.Create(l.ctx, *entry); err != nil {
		if sqlstore.IsUniqueViolation(err) {
			return nil, errors.New("JournalLogic.CreateEntry.JournalStore.Create.exist", i18n.ERROR_JOURNAL_DATE_EXIST, err).Code(http.StatusConflict)
		}
		return nil, errors.New("JournalLogic.CreateEntry.JournalStore.Create", i18n.ERROR_INTERNAL, err)
	}

	if b := l.board(); b.Loaded() {
		b.Insert(entry)
	}
	return entry, nil
}

func (l *JournalLogic) GetEntry(id string) (*types.JournalEntry, error) {
	entry, err := l.journals.Get(l.ctx, l.GetUserInfo().User, id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("JournalLogic.GetEntry.JournalStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if entry == nil {
		return nil, errors.New("JournalLogic.GetEntry.JournalStore.Get.nil", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return entry, nil
}

// reload 从存储重新加载用户的全部日记 (按日期倒序)
func (l *JournalLogic) reload() (*journal.Board, error) {
	list, err := l.journals.ListByUser(l.ctx, types.ListJournalOptions{
		UserID: l.GetUserInfo().User,
	}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("JournalLogic.reload.JournalStore.ListByUser", i18n.ERROR_INTERNAL, err)
	}

	b := l.board()
	b.Load(list)
	return b, nil
}

type JournalList struct {
	journal.View
	Total int `json:"total"`
}

func (l *JournalLogic) ListEntries(emotion, sort string) (*JournalList, error) {
	b, err := l.reload()
	if err != nil {
		return nil, errors.Trace("JournalLogic.ListEntries", err)
	}

	view := b.View(emotion, journal.ParseSortDirection(sort))
	return &JournalList{
		View:  view,
		Total: len(view.Entries),
	}, nil
}

func (l *JournalLogic) Emotions() ([]string, error) {
	b, err := l.reload()
	if err != nil {
		return nil, errors.Trace("JournalLogic.Emotions", err)
	}
	return journal.AvailableEmotions(b.Entries()), nil
}

// BeginEdit 标记正在编辑的日记
func (l *JournalLogic) BeginEdit(id string) (*types.JournalEntry, error) {
	entry, err := l.GetEntry(id)
	if err != nil {
		return nil, errors.Trace("JournalLogic.BeginEdit", err)
	}

	b := l.board()
	if !b.Loaded() {
		if b, err = l.reload(); err != nil {
			return nil, errors.Trace("JournalLogic.BeginEdit", err)
		}
	}
	b.BeginEdit(id)
	return entry, nil
}

func (l *JournalLogic) CancelEdit() {
	l.board().CancelEdit()
}

// UpdateEntry 保存编辑, 内容变化或 force 时重新进行情绪分类.
// 只有写入成功后才会替换列表中的日记并结束编辑状态.
func (l *JournalLogic) UpdateEntry(id string, edited types.JournalEntryPatch, force bool) (*types.JournalEntry, error) {
	if err := checkNotBlank("JournalLogic.UpdateEntry.check", edited.Title, edited.Content); err != nil {
		return nil, err
	}
	if edited.Date != nil && !types.IsJournalDate(*edited.Date) {
		return nil, errors.New("JournalLogic.UpdateEntry.IsJournalDate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	prev, err := l.GetEntry(id)
	if err != nil {
		return nil, errors.Trace("JournalLogic.UpdateEntry", err)
	}

	if edited.Date != nil && *edited.Date != prev.Date {
		exist, err := l.journals.GetByDate(l.ctx, prev.UserID, *edited.Date)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.New("JournalLogic.UpdateEntry.JournalStore.GetByDate", i18n.ERROR_INTERNAL, err)
		}
		if exist != nil {
			return nil, errors.New("JournalLogic.UpdateEntry.JournalStore.GetByDate.exist", i18n.ERROR_JOURNAL_DATE_EXIST, nil).Code(http.StatusConflict)
		}
	}

	var moodscores types.MoodScores
	if journal.NeedsReclassification(prev, edited, force) {
		content := prev.Content
		if edited.Content != nil {
			content = *edited.Content
		}
		scores, err := l.ai.ClassifyEmotion(l.ctx, content)
		if err != nil {
			return nil, aiError("JournalLogic.UpdateEntry.ClassifyEmotion", err)
		}
		moodscores = types.WrapMoodScores(scores)
	}

	patch := journal.BuildUpdatePatch(edited, moodscores)
	merged := journal.MergeEntry(prev, edited, moodscores)
	merged.UpdatedAt = l.now().Unix()

	err = l.board().ApplyUpdate(merged, func() error {
		if len(patch) == 0 {
			return nil
		}
		return l.journals.Update(l.ctx, prev.UserID, id, patch)
	})
	if err != nil {
		if sqlstore.IsUniqueViolation(err) {
			return nil, errors.New("JournalLogic.UpdateEntry.JournalStore.Update.exist", i18n.ERROR_JOURNAL_DATE_EXIST, err).Code(http.StatusConflict)
		}
		return nil, errors.New("JournalLogic.UpdateEntry.JournalStore.Update", i18n.ERROR_INTERNAL, err)
	}

	return merged, nil
}

func (l *JournalLogic) DeleteEntry(id string) error {
	entry, err := l.GetEntry(id)
	if err != nil {
		return errors.Trace("JournalLogic.DeleteEntry", err)
	}

	if err = l.journals.Delete(l.ctx, entry.UserID, entry.ID); err != nil {
		return errors.New("JournalLogic.DeleteEntry.JournalStore.Delete", i18n.ERROR_INTERNAL, err)
	}

	l.board().Remove(entry.ID)
	return nil
}

// Summary 首次查看时生成摘要并保存
func (l *JournalLogic) Summary(id string) (string, error) {
	entry, err := l.GetEntry(id)
	if err != nil {
		return "", errors.Trace("JournalLogic.Summary", err)
	}
	if entry.Summary != "" {
		return entry.Summary, nil
	}

	summary, err := l.ai.Summarize(l.ctx, entry.Content)
	if err != nil {
		return "", aiError("JournalLogic.Summary.Summarize", err)
	}

	if err = l.journals.SetSummary(l.ctx, entry.UserID, entry.ID, summary); err != nil {
		return "", errors.New("JournalLogic.Summary.JournalStore.SetSummary", i18n.ERROR_INTERNAL, err)
	}

	entry.Summary = summary
	l.board().Replace(entry)
	return summary, nil
}

// AttachImage 识别图片中的情绪描述, 追加到日记内容并重新分类
func (l *JournalLogic) AttachImage(id, image string) (*types.JournalEntry, error) {
	prev, err := l.GetEntry(id)
	if err != nil {
		return nil, errors.Trace("JournalLogic.AttachImage", err)
	}

	input, err := parseImageInput(image)
	if err != nil {
		return nil, errors.Trace("JournalLogic.AttachImage", err)
	}
	dataURI, err := utils.ImageBytesToBase64(input.Data, input.MimeType)
	if err != nil {
		return nil, errors.New("JournalLogic.AttachImage.ImageBytesToBase64", i18n.ERROR_IMAGE_READ_FAIL, err).Code(http.StatusBadRequest)
	}

	desc, err := l.ai.DescribeImage(l.ctx, input)
	if err != nil {
		return nil, aiError("JournalLogic.AttachImage.DescribeImage", err)
	}

	content := strings.TrimSpace(prev.Content + "\n\n" + desc)
	scores, err := l.ai.ClassifyEmotion(l.ctx, content)
	if err != nil {
		return nil, aiError("JournalLogic.AttachImage.ClassifyEmotion", err)
	}

	edited := types.JournalEntryPatch{Content: &content}
	moodscores := types.WrapMoodScores(scores)
	patch := journal.BuildUpdatePatch(edited, moodscores)
	merged := journal.MergeEntry(prev, edited, moodscores)
	merged.Image = dataURI
	merged.UpdatedAt = l.now().Unix()

	err = l.board().ApplyUpdate(merged, func() error {
		return l.transaction(l.ctx, func(ctx context.Context) error {
			if err := l.journals.SetImage(ctx, prev.UserID, prev.ID, dataURI); err != nil {
				return err
			}
			return l.journals.Update(ctx, prev.UserID, prev.ID, patch)
		})
	})
	if err != nil {
		return nil, errors.New("JournalLogic.AttachImage.JournalStore.Update", i18n.ERROR_INTERNAL, err)
	}
	return merged, nil
}
