package repository

import (
	"context"
	"time"

	"isanbot/internal/domain/entity"
)

// SessionStore owns per-user conversation state. Get returns
// entity.ErrSessionNotFound for unknown users. Update performs an
// optimistic versioned write and returns entity.ErrVersionConflict when the
// stored version moved on.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*entity.UserSession, error)
	Create(ctx context.Context, session *entity.UserSession) error
	Update(ctx context.Context, session *entity.UserSession) error
}

// HistoryStore is the append-only per-user query history. Recent returns up
// to limit entries ordered newest first.
type HistoryStore interface {
	Append(ctx context.Context, userID string, entry entity.QueryHistoryEntry) error
	Recent(ctx context.Context, userID string, limit int) ([]entity.QueryHistoryEntry, error)
}

// RecipeStore reads the recipe corpus. All applies the merge rule: the
// primary collection first, then secondary entries whose name does not
// already appear (case-insensitive).
type RecipeStore interface {
	All(ctx context.Context) ([]entity.Recipe, error)
	Primary(ctx context.Context) ([]entity.Recipe, error)
	ByID(ctx context.Context, id, source string) (*entity.Recipe, error)
}

// ClickStore tracks per-user and global recipe clicks for the recommender.
type ClickStore interface {
	TrackClick(ctx context.Context, userID string, ref entity.RecipeRef) error
	TrackView(ctx context.Context, ref entity.RecipeRef) error
	UserClicks(ctx context.Context, userID string) ([]entity.ClickRecord, error)
	TopScores(ctx context.Context, limit int) ([]entity.RecipeScore, error)
}

// QueryLog persists answered questions and the popular-query counters.
type QueryLog interface {
	SaveUserQuery(ctx context.Context, query, response, source string) error
	TrackPopularQuery(ctx context.Context, query string) error
	PopularQueries(ctx context.Context, limit int) ([]entity.PopularQuery, error)
}

// IntentProvider is the structured-intent collaborator. DetectIntent never
// returns a Go error for provider-side failures; those are reported through
// the result envelope so the caller can demote to the next tier.
type IntentProvider interface {
	IsConfigured() bool
	DetectIntent(ctx context.Context, text, sessionID string) *entity.ProviderResult
}

// GenerativeProvider is the generative-text collaborator.
type GenerativeProvider interface {
	TextOnly(ctx context.Context, prompt string) (string, error)
	FoodQuery(ctx context.Context, prompt string, recipes []entity.Recipe, foodCtx *entity.FoodContext) (string, error)
	ContinueConversation(ctx context.Context, prompt string, foodCtx *entity.FoodContext) (string, error)
	Multimodal(ctx context.Context, image []byte) (string, error)
}

// Embedder turns text into a vector for intent similarity search.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Messenger is the reply/transport sink plus the profile and content reads
// the webhook flow needs. Reply implementations cap payloads to the
// platform limits (5 messages, 10 carousel items) before delivery.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages []entity.ReplyMessage) error
	Profile(ctx context.Context, userID string) (*entity.Profile, error)
	Content(ctx context.Context, messageID string) ([]byte, error)
}

// Clock lets tests pin the notion of "now" in components that apply
// time-window rules.
type Clock func() time.Time
