package usecase

import (
	"context"
	"strings"
	"sync"

	"isanbot/internal/domain/entity"
)

// Shared in-memory fakes for the repository interfaces. All of them are
// mutex guarded because the resolver writes to some of them from
// fire-and-forget goroutines.

type fakeSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*entity.UserSession
	getErr    error
	conflicts int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*entity.UserSession{}}
}

func (f *fakeSessionStore) seed(session entity.UserSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session.Version == 0 {
		session.Version = 1
	}
	f.sessions[session.UserID] = &session
}

func (f *fakeSessionStore) get(userID string) *entity.UserSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[userID]; ok {
		c := *s
		return &c
	}
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, userID string) (*entity.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[userID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeSessionStore) Create(ctx context.Context, session *entity.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.Version = 1
	c := *session
	f.sessions[session.UserID] = &c
	return nil
}

func (f *fakeSessionStore) Update(ctx context.Context, session *entity.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return entity.ErrVersionConflict
	}
	stored, ok := f.sessions[session.UserID]
	if !ok {
		return entity.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return entity.ErrVersionConflict
	}
	session.Version++
	c := *session
	f.sessions[session.UserID] = &c
	return nil
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	entries map[string][]entity.QueryHistoryEntry
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{entries: map[string][]entity.QueryHistoryEntry{}}
}

func (f *fakeHistoryStore) seed(userID string, queries ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range queries {
		f.entries[userID] = append([]entity.QueryHistoryEntry{{Query: q}}, f.entries[userID]...)
	}
}

func (f *fakeHistoryStore) Append(ctx context.Context, userID string, entry entity.QueryHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[userID] = append([]entity.QueryHistoryEntry{entry}, f.entries[userID]...)
	return nil
}

func (f *fakeHistoryStore) Recent(ctx context.Context, userID string, limit int) ([]entity.QueryHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries[userID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return append([]entity.QueryHistoryEntry(nil), entries...), nil
}

type fakeRecipeStore struct {
	recipes []entity.Recipe
	allErr  error
}

func (f *fakeRecipeStore) All(ctx context.Context) ([]entity.Recipe, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]entity.Recipe(nil), f.recipes...), nil
}

func (f *fakeRecipeStore) Primary(ctx context.Context) ([]entity.Recipe, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var primary []entity.Recipe
	for _, r := range f.recipes {
		if r.Source == entity.SourceIsanDishes {
			primary = append(primary, r)
		}
	}
	return primary, nil
}

func (f *fakeRecipeStore) ByID(ctx context.Context, id, source string) (*entity.Recipe, error) {
	for i := range f.recipes {
		if f.recipes[i].ID == id && f.recipes[i].Source == source {
			c := f.recipes[i]
			return &c, nil
		}
	}
	return nil, entity.ErrRecipeNotFound
}

type fakeClickStore struct {
	mu         sync.Mutex
	userClicks map[string][]entity.ClickRecord
	scores     []entity.RecipeScore
	clicked    []entity.RecipeRef
	viewed     []entity.RecipeRef
	err        error
}

func newFakeClickStore() *fakeClickStore {
	return &fakeClickStore{userClicks: map[string][]entity.ClickRecord{}}
}

func (f *fakeClickStore) TrackClick(ctx context.Context, userID string, ref entity.RecipeRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicked = append(f.clicked, ref)
	return f.err
}

func (f *fakeClickStore) TrackView(ctx context.Context, ref entity.RecipeRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewed = append(f.viewed, ref)
	return f.err
}

func (f *fakeClickStore) UserClicks(ctx context.Context, userID string) ([]entity.ClickRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.ClickRecord(nil), f.userClicks[userID]...), nil
}

func (f *fakeClickStore) TopScores(ctx context.Context, limit int) ([]entity.RecipeScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	scores := f.scores
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return append([]entity.RecipeScore(nil), scores...), nil
}

func (f *fakeClickStore) clickedRefs() []entity.RecipeRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.RecipeRef(nil), f.clicked...)
}

type savedQuery struct {
	query    string
	response string
	source   string
}

type fakeQueryLog struct {
	mu      sync.Mutex
	saved   []savedQuery
	tracked []string
	popular []entity.PopularQuery
}

func (f *fakeQueryLog) SaveUserQuery(ctx context.Context, query, response, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedQuery{query: query, response: response, source: source})
	return nil
}

func (f *fakeQueryLog) TrackPopularQuery(ctx context.Context, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, query)
	return nil
}

func (f *fakeQueryLog) PopularQueries(ctx context.Context, limit int) ([]entity.PopularQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	popular := f.popular
	if len(popular) > limit {
		popular = popular[:limit]
	}
	return append([]entity.PopularQuery(nil), popular...), nil
}

func (f *fakeQueryLog) savedQueries() []savedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedQuery(nil), f.saved...)
}

func (f *fakeQueryLog) trackedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tracked...)
}

type fakeIntentProvider struct {
	configured bool
	result     *entity.ProviderResult
	calls      int
}

func (f *fakeIntentProvider) IsConfigured() bool { return f.configured }

func (f *fakeIntentProvider) DetectIntent(ctx context.Context, text, sessionID string) *entity.ProviderResult {
	f.calls++
	if f.result != nil {
		return f.result
	}
	return &entity.ProviderResult{Success: true, Found: false}
}

type fakeGemini struct {
	mu sync.Mutex

	textResp     string
	foodResp     string
	continueResp string
	multiResp    string

	textErr     error
	foodErr     error
	continueErr error
	multiErr    error

	textPrompts     []string
	foodPrompts     []string
	continuePrompts []string
	continueCtxs    []*entity.FoodContext
}

func (f *fakeGemini) TextOnly(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textPrompts = append(f.textPrompts, prompt)
	return f.textResp, f.textErr
}

func (f *fakeGemini) FoodQuery(ctx context.Context, prompt string, recipes []entity.Recipe, foodCtx *entity.FoodContext) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.foodPrompts = append(f.foodPrompts, prompt)
	return f.foodResp, f.foodErr
}

func (f *fakeGemini) ContinueConversation(ctx context.Context, prompt string, foodCtx *entity.FoodContext) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.continuePrompts = append(f.continuePrompts, prompt)
	f.continueCtxs = append(f.continueCtxs, foodCtx)
	return f.continueResp, f.continueErr
}

func (f *fakeGemini) Multimodal(ctx context.Context, image []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.multiResp, f.multiErr
}

type sentReply struct {
	token    string
	messages []entity.ReplyMessage
}

type fakeMessenger struct {
	mu       sync.Mutex
	replies  []sentReply
	failures int
	profile  *entity.Profile
	content  []byte
}

func (f *fakeMessenger) Reply(ctx context.Context, replyToken string, messages []entity.ReplyMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentReply{token: replyToken, messages: messages})
	if f.failures > 0 {
		f.failures--
		return entity.ErrTransportFailure
	}
	return nil
}

func (f *fakeMessenger) Profile(ctx context.Context, userID string) (*entity.Profile, error) {
	if f.profile == nil {
		return nil, entity.ErrTransportFailure
	}
	c := *f.profile
	return &c, nil
}

func (f *fakeMessenger) Content(ctx context.Context, messageID string) ([]byte, error) {
	if f.content == nil {
		return nil, entity.ErrTransportFailure
	}
	return f.content, nil
}

func (f *fakeMessenger) sent() []sentReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentReply(nil), f.replies...)
}

func (f *fakeMessenger) lastTexts() []string {
	var texts []string
	sent := f.sent()
	if len(sent) == 0 {
		return nil
	}
	for _, m := range sent[len(sent)-1].messages {
		texts = append(texts, m.Text)
	}
	return texts
}

func (f *fakeMessenger) allText() string {
	var b strings.Builder
	for _, reply := range f.sent() {
		for _, m := range reply.messages {
			b.WriteString(m.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
