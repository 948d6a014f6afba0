// Package classify holds the lexicon tables and the stateless text
// classifiers used to route inbound messages: command detection, food
// relatedness, direct dish detection and generic-question detection.
package classify

import "strings"

// RecipeDetailPrefix is the literal command prefix meaning "how to make".
const RecipeDetailPrefix = "วิธีทำ"

// Command is the result of command classification for one message.
type Command int

const (
	CommandNone Command = iota
	CommandReset
	CommandMenu
	CommandShowAllDishes
	CommandFaq
	CommandRecipeDetail
)

// ClassifyCommand matches the fixed command vocabulary. Reset/Menu/Faq are
// exact matches after lowercasing and trimming; RecipeDetail strips the
// prefix and returns the remaining dish name.
func ClassifyCommand(text string) (Command, string) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "reset":
		return CommandReset, ""
	case "เมนู", "menu":
		return CommandMenu, ""
	case "รายการอาหาร":
		return CommandShowAllDishes, ""
	case "คำถามที่ถามบ่อย", "popular", "faq":
		return CommandFaq, ""
	}

	if strings.HasPrefix(trimmed, RecipeDetailPrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, RecipeDetailPrefix))
		return CommandRecipeDetail, name
	}

	return CommandNone, ""
}

// IsFoodRelated reports whether any food keyword appears as a
// case-insensitive substring of text.
func IsFoodRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range foodKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// IsDirectDishQuery reports whether the text is, or substantially contains,
// a known dish name.
func IsDirectDishQuery(text string) bool {
	search := strings.ToLower(strings.TrimSpace(text))
	for _, dish := range dishNames {
		lower := strings.ToLower(dish)
		if search == lower || strings.Contains(search, lower) {
			return true
		}
	}
	return false
}

// ContainsOtherDish returns the first dish name found in the query that is
// not the current one, or "" when the query mentions no other dish.
func ContainsOtherDish(query, currentDish string) string {
	lowerQuery := strings.ToLower(query)
	current := strings.ToLower(currentDish)
	for _, dish := range dishNames {
		lower := strings.ToLower(dish)
		if lower == current {
			continue
		}
		if strings.Contains(lowerQuery, lower) {
			return dish
		}
	}
	return ""
}

// IsGenericFoodQuestion reports whether the text matches one of the
// context-dependent question shapes.
func IsGenericFoodQuestion(text string) bool {
	for _, pattern := range genericQuestionPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// IsRejectionResponse reports whether a provider response contains any of
// the given rejection phrases as a case-insensitive substring.
func IsRejectionResponse(response string, phrases []string) bool {
	lower := strings.ToLower(response)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// Normalize lowercases and trims query text the way every counter and log
// keys it.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
