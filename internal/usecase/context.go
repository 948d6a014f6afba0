package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"isanbot/internal/classify"
	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
)

// IsRelatedToContext decides whether a new query continues the active
// topic. The default is continuation: only an explicit mention of a
// different dish breaks the context. False negatives (staying on a stale
// topic) are preferred over unnecessary resets.
func IsRelatedToContext(query string, foodCtx *entity.FoodContext) bool {
	if foodCtx == nil {
		return true
	}

	lowerQuery := strings.ToLower(query)
	dishName := strings.ToLower(foodCtx.Name)

	if strings.Contains(lowerQuery, dishName) {
		return true
	}

	// Generic questions always ride on the current topic.
	if classify.IsGenericFoodQuestion(lowerQuery) {
		return true
	}

	if other := classify.ContainsOtherDish(lowerQuery, dishName); other != "" {
		return false
	}

	return true
}

// ContextFinder recovers an implicit topic from recent query history when a
// context-dependent question arrives with no active context.
type ContextFinder struct {
	history repository.HistoryStore
	recipes repository.RecipeStore
	window  int
	log     zerolog.Logger
}

func NewContextFinder(history repository.HistoryStore, recipes repository.RecipeStore, window int, log zerolog.Logger) *ContextFinder {
	return &ContextFinder{history: history, recipes: recipes, window: window, log: log}
}

// FromHistory scans the most recent history entries newest-first, skips
// generic questions, and adopts the first entry that is a direct dish query
// or a "how to make" command. Returns nil when the window holds no usable
// signal.
func (f *ContextFinder) FromHistory(ctx context.Context, userID string) (*entity.FoodContext, error) {
	entries, err := f.history.Recent(ctx, userID, f.window)
	if err != nil {
		return nil, fmt.Errorf("reading query history: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	for _, entry := range entries {
		query := entry.Query
		if classify.IsGenericFoodQuestion(query) {
			continue
		}

		isDetail := strings.HasPrefix(query, classify.RecipeDetailPrefix)
		if !classify.IsDirectDishQuery(query) && !isDetail {
			continue
		}

		dishName := query
		if isDetail {
			dishName = strings.TrimSpace(strings.TrimPrefix(query, classify.RecipeDetailPrefix))
		}
		f.log.Debug().Str("dish", dishName).Msg("potential dish name found in history")

		recipes, err := f.recipes.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading recipe corpus: %w", err)
		}
		if recipe := matchRecipeLoose(recipes, dishName); recipe != nil {
			return FoodContextFromRecipe(recipe), nil
		}

		// Not in the corpus: synthesize a minimal context so the
		// conversation can still continue on this dish.
		return &entity.FoodContext{
			Name:        dishName,
			Description: "อาหารชื่อ " + dishName,
			Source:      entity.SourceHistoryGenerated,
		}, nil
	}

	return nil, nil
}

// FoodContextFromRecipe snapshots a corpus recipe as the active topic.
func FoodContextFromRecipe(recipe *entity.Recipe) *entity.FoodContext {
	return &entity.FoodContext{
		Name:        recipe.Name,
		Description: recipe.Description,
		Ingredients: recipe.Ingredients,
		Steps:       recipe.Steps,
		Source:      recipe.Source,
	}
}

// matchRecipeLoose resolves a recovered name against the corpus by exact
// then bidirectional substring match.
func matchRecipeLoose(recipes []entity.Recipe, name string) *entity.Recipe {
	search := strings.ToLower(name)
	for i := range recipes {
		corpus := strings.ToLower(recipes[i].Name)
		if corpus == search || strings.Contains(corpus, search) || strings.Contains(search, corpus) {
			return &recipes[i]
		}
	}
	return nil
}

// matchRecipeForQuery resolves a direct dish query against the corpus the
// way context capture does: exact name or corpus-name-contains-query.
func matchRecipeForQuery(recipes []entity.Recipe, query string) *entity.Recipe {
	search := strings.ToLower(strings.TrimSpace(query))
	for i := range recipes {
		corpus := strings.ToLower(recipes[i].Name)
		if corpus == search || strings.Contains(corpus, search) {
			return &recipes[i]
		}
	}
	return nil
}

// matchRecipeExact resolves a recipe-detail command by exact name only.
func matchRecipeExact(recipes []entity.Recipe, name string) *entity.Recipe {
	search := strings.ToLower(name)
	for i := range recipes {
		if strings.ToLower(recipes[i].Name) == search {
			return &recipes[i]
		}
	}
	return nil
}
