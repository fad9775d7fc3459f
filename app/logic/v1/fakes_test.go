package v1

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/quka-ai/moodjournal/app/core"
	"github.com/quka-ai/moodjournal/pkg/ai"
	"github.com/quka-ai/moodjournal/pkg/journal"
	"github.com/quka-ai/moodjournal/pkg/security"
	"github.com/quka-ai/moodjournal/pkg/types"
	"github.com/quka-ai/moodjournal/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	os.Exit(m.Run())
}

type fakeJournalStore struct {
	mu        sync.Mutex
	entries   map[string]*types.JournalEntry
	updateErr error
	patches   []map[string]any
}

func newFakeJournalStore(entries ...*types.JournalEntry) *fakeJournalStore {
	s := &fakeJournalStore{entries: make(map[string]*types.JournalEntry)}
	for _, e := range entries {
		s.entries[e.ID] = e.Clone()
	}
	return s
}

func (s *fakeJournalStore) Create(ctx context.Context, data types.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[data.ID] = data.Clone()
	return nil
}

func (s *fakeJournalStore) Get(ctx context.Context, userID, id string) (*types.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return e.Clone(), nil
}

func (s *fakeJournalStore) GetByDate(ctx context.Context, userID, date string) (*types.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.UserID == userID && e.Date == date {
			return e.Clone(), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeJournalStore) Update(ctx context.Context, userID, id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return sql.ErrNoRows
	}
	s.patches = append(s.patches, patch)
	for k, v := range patch {
		switch k {
		case "title":
			e.Title = v.(string)
		case "content":
			e.Content = v.(string)
		case "date":
			e.Date = v.(string)
		case "summary":
			e.Summary = v.(string)
		case "keywords":
			e.Keywords = v.(types.RawJSON)
		case "moodscores":
			e.MoodScores = v.(types.MoodScores)
		default:
			return fmt.Errorf("column %s is not updatable", k)
		}
	}
	return nil
}

func (s *fakeJournalStore) SetSummary(ctx context.Context, userID, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id].Summary = summary
	return nil
}

func (s *fakeJournalStore) SetImage(ctx context.Context, userID, id, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id].Image = image
	return nil
}

func (s *fakeJournalStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *fakeJournalStore) ListByUser(ctx context.Context, opts types.ListJournalOptions, page, pageSize uint64) ([]*types.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*types.JournalEntry
	for _, e := range s.entries {
		if e.UserID == opts.UserID {
			list = append(list, e.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date > list[j].Date })
	return list, nil
}

func (s *fakeJournalStore) Total(ctx context.Context, opts types.ListJournalOptions) (int64, error) {
	list, _ := s.ListByUser(ctx, opts, 0, 0)
	return int64(len(list)), nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*types.User
}

func (s *fakeUserStore) Create(ctx context.Context, data types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[data.ID] = &data
	return nil
}

func (s *fakeUserStore) GetUser(ctx context.Context, appid, id string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *u
	return &c, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, appid, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeUserStore) UpdateUserProfile(ctx context.Context, appid, id string, data types.UpdateUserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if data.FirstName != nil {
		u.FirstName = *data.FirstName
	}
	if data.LastName != nil {
		u.LastName = *data.LastName
	}
	if data.Avatar != nil {
		u.Avatar = *data.Avatar
	}
	return nil
}

func (s *fakeUserStore) UpdateLastSignedIn(ctx context.Context, appid, id string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].LastSignedInAt = at
	return nil
}

func (s *fakeUserStore) Delete(ctx context.Context, appid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*types.AccessToken
}

func (s *fakeTokenStore) Create(ctx context.Context, data types.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[data.Token] = &data
	return nil
}

func (s *fakeTokenStore) GetAccessToken(ctx context.Context, appid, token string) (*types.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (s *fakeTokenStore) Delete(ctx context.Context, appid, userID string, id int64) error {
	return nil
}

func (s *fakeTokenStore) DeleteByToken(ctx context.Context, appid, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeTokenStore) ClearUserTokens(ctx context.Context, appid, userID string) error {
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", types.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

var errUpstream = errors.New("upstream exploded")

type fakeAI struct {
	mu            sync.Mutex
	classifyCalls int
	classifyErr   error
	scores        []types.MoodScore
	summary       string
	description   string
	transcribed   []ai.TranscribeRequest
}

func (f *fakeAI) ClassifyEmotion(ctx context.Context, text string) ([]types.MoodScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classifyCalls++
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	if text == "" {
		return nil, ai.ErrEmptyContent
	}
	return append([]types.MoodScore(nil), f.scores...), nil
}

func (f *fakeAI) Summarize(ctx context.Context, content string) (string, error) {
	return f.summary, nil
}

func (f *fakeAI) DescribeImage(ctx context.Context, image ai.ImageInput) (string, error) {
	return f.description, nil
}

func (f *fakeAI) Transcribe(ctx context.Context, req ai.TranscribeRequest) (*ai.TranscriptionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := ai.ValidateAudio(req.Audio); err != nil {
		return nil, err
	}
	f.transcribed = append(f.transcribed, req)
	return &ai.TranscriptionResult{Text: "transcribed"}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func (f *fakeStorage) GetStaticDomain() string {
	return "https://static.example.com"
}

func (f *fakeStorage) GenUploadFileMeta(fullPath string, contentLength int64) (core.UploadFileMeta, error) {
	return core.UploadFileMeta{
		UploadEndpoint: "https://upload.example.com" + fullPath,
		FullPath:       fullPath,
	}, nil
}

func (f *fakeStorage) SaveFile(ctx context.Context, fullPath string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[fullPath] = content
	return nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, fullFilePath)
	f.deleted = append(f.deleted, fullFilePath)
	return nil
}

func (f *fakeStorage) GenGetObjectPreSignURL(url string) (string, error) {
	return "https://static.example.com" + url + "?signed=1", nil
}

type testEnv struct {
	journals *fakeJournalStore
	users    *fakeUserStore
	tokens   *fakeTokenStore
	cache    *memCache
	ai       *fakeAI
	storage  *fakeStorage
	backend  *backend
}

func newTestEnv(entries ...*types.JournalEntry) *testEnv {
	env := &testEnv{
		journals: newFakeJournalStore(entries...),
		users:    &fakeUserStore{users: make(map[string]*types.User)},
		tokens:   &fakeTokenStore{tokens: make(map[string]*types.AccessToken)},
		cache:    &memCache{data: make(map[string]string)},
		ai: &fakeAI{
			scores:      []types.MoodScore{{Label: "joy", Score: 0.8}, {Label: "sadness", Score: 0.1}},
			summary:     "a short summary",
			description: "The photo feels calm.",
		},
		storage: &fakeStorage{files: make(map[string][]byte)},
	}
	sems := make(map[string]core.Semaphore)
	var mu sync.Mutex
	env.backend = &backend{
		journals:  env.journals,
		users:     env.users,
		tokens:    env.tokens,
		ai:        env.ai,
		boards:    journal.NewRegistry(),
		recorders: ai.NewRecorderRegistry(),
		semaphore: func(userID string) core.Semaphore {
			mu.Lock()
			defer mu.Unlock()
			if s, ok := sems[userID]; ok {
				return s
			}
			sems[userID] = core.NewLocalSemaphore(1)
			return sems[userID]
		},
		storage: func() core.FileStorage {
			return env.storage
		},
		cache: env.cache,
		now: func() time.Time {
			return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
		},
	}
	return env
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), TOKEN_CONTEXT_KEY, security.NewTokenClaims(types.DEFAULT_APPID, types.DEFAULT_APPID, userID, 0))
}

func (env *testEnv) journalLogic(userID string) *JournalLogic {
	ctx := userCtx(userID)
	return &JournalLogic{ctx: ctx, UserInfo: SetupUserInfo(ctx), backend: env.backend}
}

func (env *testEnv) recordingLogic(userID string) *RecordingLogic {
	ctx := userCtx(userID)
	return &RecordingLogic{ctx: ctx, UserInfo: SetupUserInfo(ctx), backend: env.backend}
}

func (env *testEnv) userLogic() *UserLogic {
	return &UserLogic{ctx: context.Background(), backend: env.backend}
}

func (env *testEnv) authLogic() *AuthLogic {
	return &AuthLogic{ctx: context.Background(), backend: env.backend}
}

func (env *testEnv) authedUserLogic(userID string) *AuthedUserLogic {
	ctx := userCtx(userID)
	return &AuthedUserLogic{ctx: ctx, UserInfo: SetupUserInfo(ctx), backend: env.backend}
}

func (env *testEnv) aiLogic() *AILogic {
	ctx := userCtx("u1")
	return &AILogic{ctx: ctx, UserInfo: SetupUserInfo(ctx), backend: env.backend}
}
