package entity

import "time"

// Recipe source collections. The same dish name may exist in both; the
// primary collection (isan_dishes) wins duplicate names.
const (
	SourceIsanDishes       = "isan_dishes"
	SourceRecipes          = "recipes"
	SourceGeminiGenerated  = "gemini_generated"
	SourceHistoryGenerated = "history_generated"
)

// Recipe is the canonical recipe record. Raw documents carry legacy field
// spellings (image_url, instructions); the store normalizes them on read.
type Recipe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	YoutubeURL  string   `json:"youtubeUrl,omitempty"`
	Source      string   `json:"source"`
}

// RecipeRef identifies a recipe within its source collection.
type RecipeRef struct {
	ID     string
	Source string
}

// ClickRecord counts how many times one user opened one recipe.
type ClickRecord struct {
	UserID      string    `json:"user_id"`
	RecipeID    string    `json:"recipe_id"`
	Source      string    `json:"source"`
	Count       int64     `json:"count"`
	LastClicked time.Time `json:"last_clicked"`
}

// RecipeScore is the global click aggregate for one recipe.
type RecipeScore struct {
	RecipeID    string    `json:"recipe_id"`
	Source      string    `json:"source"`
	TotalClicks int64     `json:"total_clicks"`
	LastClicked time.Time `json:"last_clicked"`
}

// PopularQuery is a frequency counter over normalized query text.
type PopularQuery struct {
	Text        string    `json:"text"`
	Count       int64     `json:"count"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
}

// UserQuery is a logged question/answer pair with the source tag of the
// path that produced the answer (dialogflow, gemini, gemini_with_context,
// gemini_fallback, gemini_multimodal).
type UserQuery struct {
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	Source      string    `json:"source"`
	Count       int64     `json:"count"`
	Timestamp   time.Time `json:"timestamp"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}
