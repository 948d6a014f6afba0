package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"isanbot/internal/domain/entity"
)

const defaultRecipeDescription = "อาหารอีสาน"

// flexList accepts either a JSON array of strings or a single string; the
// seeded corpus carries both shapes.
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*f = nil
		return nil
	}
	*f = []string{single}
	return nil
}

// recipeDoc is the raw stored shape. Older documents use image_url,
// video_url and instructions; newer ones imageUrl, youtubeUrl and steps.
type recipeDoc struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Ingredients   flexList `json:"ingredients"`
	Steps         flexList `json:"steps"`
	Instructions  flexList `json:"instructions"`
	ImageURL      string   `json:"imageUrl"`
	ImageURLSnake string   `json:"image_url"`
	YoutubeURL    string   `json:"youtubeUrl"`
	VideoURL      string   `json:"video_url"`
}

func (d *recipeDoc) normalize(id, source string) entity.Recipe {
	r := entity.Recipe{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Steps:       d.Steps,
		ImageURL:    d.ImageURL,
		YoutubeURL:  d.YoutubeURL,
		Source:      source,
	}
	if len(r.Steps) == 0 {
		r.Steps = d.Instructions
	}
	if r.ImageURL == "" {
		r.ImageURL = d.ImageURLSnake
	}
	if r.YoutubeURL == "" {
		r.YoutubeURL = d.VideoURL
	}
	if r.Description == "" {
		r.Description = defaultRecipeDescription
	}
	return r
}

// RedisRecipeStore reads the recipe corpus from two collections: documents
// at "<collection>:<id>" with a set index per collection. All merges both
// collections; the primary collection wins duplicate names.
type RedisRecipeStore struct {
	client *redis.Client
}

func NewRedisRecipeStore(client *redis.Client) *RedisRecipeStore {
	return &RedisRecipeStore{client: client}
}

func (s *RedisRecipeStore) collection(ctx context.Context, source string) ([]entity.Recipe, error) {
	ids, err := s.client.SMembers(ctx, "idx:"+source).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	recipes := make([]entity.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.ByID(ctx, id, source)
		if err != nil {
			continue
		}
		recipes = append(recipes, *r)
	}
	return recipes, nil
}

func (s *RedisRecipeStore) Primary(ctx context.Context) ([]entity.Recipe, error) {
	return s.collection(ctx, entity.SourceIsanDishes)
}

func (s *RedisRecipeStore) All(ctx context.Context) ([]entity.Recipe, error) {
	primary, err := s.Primary(ctx)
	if err != nil {
		return nil, err
	}
	secondary, err := s.collection(ctx, entity.SourceRecipes)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(primary))
	for _, r := range primary {
		seen[strings.ToLower(r.Name)] = true
	}
	merged := primary
	for _, r := range secondary {
		if seen[strings.ToLower(r.Name)] {
			continue
		}
		seen[strings.ToLower(r.Name)] = true
		merged = append(merged, r)
	}
	return merged, nil
}

func (s *RedisRecipeStore) ByID(ctx context.Context, id, source string) (*entity.Recipe, error) {
	val, err := s.client.Get(ctx, source+":"+id).Result()
	if err == redis.Nil {
		return nil, entity.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	var doc recipeDoc
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt recipe document %s:%s: %v", entity.ErrPersistenceFailure, source, id, err)
	}
	recipe := doc.normalize(id, source)
	return &recipe, nil
}
