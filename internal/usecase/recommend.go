package usecase

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
)

// Recommender blends per-user click history, global popularity and a
// tiered randomized fill into a ranked recipe list.
type Recommender struct {
	clicks  repository.ClickStore
	recipes repository.RecipeStore

	recencyWindow time.Duration
	recencyFactor float64
	maxLimit      int
	globalLimit   int

	now repository.Clock
	rng *rand.Rand
	log zerolog.Logger
}

func NewRecommender(clicks repository.ClickStore, recipes repository.RecipeStore, log zerolog.Logger) *Recommender {
	return &Recommender{
		clicks:        clicks,
		recipes:       recipes,
		recencyWindow: 7 * 24 * time.Hour,
		recencyFactor: 1.5,
		maxLimit:      10,
		globalLimit:   20,
		now:           time.Now,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		log:           log,
	}
}

// WithClock pins the recommender's notion of now.
func (r *Recommender) WithClock(now repository.Clock) *Recommender {
	r.now = now
	return r
}

// WithRand pins the shuffle source.
func (r *Recommender) WithRand(rng *rand.Rand) *Recommender {
	r.rng = rng
	return r
}

// WithTuning overrides the scoring and sizing defaults.
func (r *Recommender) WithTuning(recencyWindow time.Duration, recencyFactor float64, maxLimit, globalLimit int) *Recommender {
	r.recencyWindow = recencyWindow
	r.recencyFactor = recencyFactor
	r.maxLimit = maxLimit
	r.globalLimit = globalLimit
	return r
}

type scoredRef struct {
	ref   entity.RecipeRef
	score float64
}

// Recommend returns up to limit recipes ordered personal-first, then
// globally popular, then randomized fill. Records that fail to resolve are
// skipped; any unrecoverable error degrades to a uniform random sample.
func (r *Recommender) Recommend(ctx context.Context, userID string, limit int) []entity.Recipe {
	if limit > r.maxLimit {
		limit = r.maxLimit
	}
	if limit <= 0 {
		return nil
	}

	refs, err := r.rankedRefs(ctx, userID, limit)
	if err != nil {
		r.log.Error().Err(err).Msg("recommendation ranking failed, falling back to random sample")
		return r.randomSample(ctx, limit)
	}

	resolved := make([]entity.Recipe, 0, len(refs))
	for _, ref := range refs {
		recipe, err := r.recipes.ByID(ctx, ref.ID, ref.Source)
		if err != nil || recipe == nil {
			r.log.Warn().Err(err).Str("recipe", ref.ID).Msg("skipping unresolvable recommendation")
			continue
		}
		resolved = append(resolved, *recipe)
	}
	return resolved
}

func (r *Recommender) rankedRefs(ctx context.Context, userID string, limit int) ([]entity.RecipeRef, error) {
	// Tier 1: personal clicks weighted by recency.
	var personal []scoredRef
	if userID != "" {
		records, err := r.clicks.UserClicks(ctx, userID)
		if err != nil {
			return nil, err
		}
		now := r.now()
		for _, rec := range records {
			factor := 1.0
			if now.Sub(rec.LastClicked) <= r.recencyWindow {
				factor = r.recencyFactor
			}
			personal = append(personal, scoredRef{
				ref:   entity.RecipeRef{ID: rec.RecipeID, Source: rec.Source},
				score: float64(rec.Count) * factor,
			})
		}
		sort.SliceStable(personal, func(i, j int) bool { return personal[i].score > personal[j].score })
		if len(personal) > limit {
			personal = personal[:limit]
		}
	}

	// Tier 2: global popularity, minus anything personal already chose.
	scores, err := r.clicks.TopScores(ctx, r.globalLimit)
	if err != nil {
		return nil, err
	}
	var global []scoredRef
	for _, sc := range scores {
		if containsRef(personal, sc.RecipeID) {
			continue
		}
		global = append(global, scoredRef{
			ref:   entity.RecipeRef{ID: sc.RecipeID, Source: sc.Source},
			score: float64(sc.TotalClicks),
		})
	}
	sort.SliceStable(global, func(i, j int) bool { return global[i].score > global[j].score })

	combined := make([]entity.RecipeRef, 0, limit)
	for _, s := range append(personal, global...) {
		if len(combined) == limit {
			break
		}
		combined = append(combined, s.ref)
	}

	// Tier 3: tiered randomized fill from the rest of the corpus.
	if len(combined) < limit {
		fill, err := r.randomFill(ctx, combined, limit-len(combined))
		if err != nil {
			return nil, err
		}
		combined = append(combined, fill...)
	}

	return combined, nil
}

// randomFill partitions the unselected corpus into three equal tiers in
// corpus order, shuffles each independently, and draws roughly 60/30/10
// across them (ceiling rounding, remainder from the last tier).
func (r *Recommender) randomFill(ctx context.Context, selected []entity.RecipeRef, needed int) ([]entity.RecipeRef, error) {
	all, err := r.recipes.All(ctx)
	if err != nil {
		return nil, err
	}

	var remaining []entity.Recipe
	for _, recipe := range all {
		if refSelected(selected, recipe.ID) {
			continue
		}
		remaining = append(remaining, recipe)
	}
	if len(remaining) == 0 {
		return nil, nil
	}

	tierSize := int(math.Ceil(float64(len(remaining)) / 3))
	tiers := [][]entity.Recipe{
		sliceTier(remaining, 0, tierSize),
		sliceTier(remaining, tierSize, tierSize*2),
		sliceTier(remaining, tierSize*2, len(remaining)),
	}
	for _, tier := range tiers {
		r.rng.Shuffle(len(tier), func(i, j int) { tier[i], tier[j] = tier[j], tier[i] })
	}

	tier1Count := int(math.Ceil(float64(needed) * 0.6))
	tier2Count := int(math.Ceil(float64(needed) * 0.3))
	tier3Count := needed - tier1Count - tier2Count
	counts := []int{tier1Count, tier2Count, tier3Count}

	// A thin partition does not redraw its deficit from the other tiers,
	// so the fill may come up short of needed.
	var fill []entity.RecipeRef
	for i, tier := range tiers {
		n := counts[i]
		if n < 0 {
			n = 0
		}
		if n > len(tier) {
			n = len(tier)
		}
		for _, recipe := range tier[:n] {
			fill = append(fill, entity.RecipeRef{ID: recipe.ID, Source: recipe.Source})
		}
	}
	if len(fill) > needed {
		fill = fill[:needed]
	}
	return fill, nil
}

func (r *Recommender) randomSample(ctx context.Context, limit int) []entity.Recipe {
	all, err := r.recipes.All(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("random sample fallback failed")
		return nil
	}
	r.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func containsRef(refs []scoredRef, recipeID string) bool {
	for _, s := range refs {
		if s.ref.ID == recipeID {
			return true
		}
	}
	return false
}

func refSelected(refs []entity.RecipeRef, recipeID string) bool {
	for _, ref := range refs {
		if ref.ID == recipeID {
			return true
		}
	}
	return false
}

func sliceTier(recipes []entity.Recipe, from, to int) []entity.Recipe {
	if from > len(recipes) {
		from = len(recipes)
	}
	if to > len(recipes) {
		to = len(recipes)
	}
	return recipes[from:to]
}
