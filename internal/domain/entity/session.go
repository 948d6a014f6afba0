package entity

import "time"

// Conversation modes. A session enters ModeGemini exactly when a food
// context is captured and returns to ModeDefault on reset.
const (
	ModeDefault = "default"
	ModeGemini  = "gemini"
)

// Profile is the subset of the LINE profile we keep per user.
type Profile struct {
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// FoodContext is the dish currently under discussion with one user.
// It is replaced wholesale, never merged, and always has a non-empty Name.
type FoodContext struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Source      string   `json:"source"`
}

// UserSession is the per-user conversation state. Version supports
// optimistic updates in the session store; concurrent writers that lose the
// version race retry once and then last-writer-wins.
type UserSession struct {
	UserID      string       `json:"user_id"`
	Profile     Profile      `json:"profile"`
	Mode        string       `json:"mode"`
	FoodContext *FoodContext `json:"food_context,omitempty"`
	Version     int64        `json:"version"`
	Created     time.Time    `json:"created"`
	LastUpdated time.Time    `json:"last_updated"`
}

// QueryHistoryEntry is one normalized question in a user's append-only
// history, read back newest-first.
type QueryHistoryEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}
