package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"isanbot/internal/domain/entity"
)

type ContextSuite struct {
	suite.Suite

	history *fakeHistoryStore
	recipes *fakeRecipeStore
	finder  *ContextFinder
}

func TestContextSuite(t *testing.T) {
	suite.Run(t, new(ContextSuite))
}

func (s *ContextSuite) SetupTest() {
	s.history = newFakeHistoryStore()
	s.recipes = &fakeRecipeStore{recipes: testCorpus()}
	s.finder = NewContextFinder(s.history, s.recipes, 5, zerolog.Nop())
}

func (s *ContextSuite) TestIsRelatedToContext() {
	larb := &entity.FoodContext{Name: "ลาบหมู", Source: entity.SourceIsanDishes}

	tests := []struct {
		name    string
		query   string
		foodCtx *entity.FoodContext
		want    bool
	}{
		{name: "nil context continues", query: "อะไรก็ได้", foodCtx: nil, want: true},
		{name: "mentions current dish", query: "ลาบหมูเผ็ดไหม", foodCtx: larb, want: true},
		{name: "generic question rides on topic", query: "ใส่พริกได้ไหม", foodCtx: larb, want: true},
		{name: "other dish breaks context", query: "แล้วส้มตำล่ะ", foodCtx: larb, want: false},
		{name: "neutral text continues", query: "ขอบคุณครับ", foodCtx: larb, want: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, IsRelatedToContext(tt.query, tt.foodCtx))
		})
	}
}

func (s *ContextSuite) TestFromHistory_EmptyHistory() {
	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Nil(foodCtx)
}

func (s *ContextSuite) TestFromHistory_DirectDishQueryResolvesCorpusRecipe() {
	s.history.seed(testUserID, "ลาบหมู")

	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(foodCtx)
	s.Equal("ลาบหมู", foodCtx.Name)
	s.Equal(entity.SourceIsanDishes, foodCtx.Source)
	s.NotEmpty(foodCtx.Steps, "corpus hit carries the full recipe snapshot")
}

func (s *ContextSuite) TestFromHistory_SkipsGenericEntries() {
	// Oldest first in seed order; the generic follow-ups are newer.
	s.history.seed(testUserID, "ส้มตำ", "ใส่พริกได้ไหม", "เก็บได้กี่วัน")

	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(foodCtx)
	s.Equal("ส้มตำ", foodCtx.Name)
}

func (s *ContextSuite) TestFromHistory_RecipeDetailCommandStripsPrefix() {
	s.history.seed(testUserID, "วิธีทำแกงอ่อม")

	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(foodCtx)
	s.Equal("แกงอ่อม", foodCtx.Name)
}

func (s *ContextSuite) TestFromHistory_UnknownDishSynthesizesContext() {
	s.history.seed(testUserID, "วิธีทำแกงเปรอะ")

	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(foodCtx)
	s.Equal("แกงเปรอะ", foodCtx.Name)
	s.Equal(entity.SourceHistoryGenerated, foodCtx.Source)
	s.Contains(foodCtx.Description, "แกงเปรอะ")
}

func (s *ContextSuite) TestFromHistory_NoUsableSignal() {
	s.history.seed(testUserID, "สวัสดีครับ", "ขอบคุณมาก")

	foodCtx, err := s.finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Nil(foodCtx)
}

func (s *ContextSuite) TestFromHistory_RespectsWindow() {
	finder := NewContextFinder(s.history, s.recipes, 2, zerolog.Nop())
	// The dish query is pushed out of the 2-entry window by newer noise.
	s.history.seed(testUserID, "ลาบหมู", "สวัสดีครับ", "ขอบคุณมาก")

	foodCtx, err := finder.FromHistory(context.Background(), testUserID)
	s.Require().NoError(err)
	s.Nil(foodCtx)
}
