package usecase

import (
	"context"
	"fmt"
	"time"

	"isanbot/internal/domain/entity"
)

func (s *ResolverSuite) TestMenuCommand() {
	s.seedSession(nil)

	s.resolver.HandleEvent(context.Background(), s.textEvent("เมนู"))

	sent := s.messenger.sent()
	s.Require().Len(sent, 1)
	messages := sent[0].messages
	s.Require().Len(messages, 3)

	s.Equal(entity.ReplyTypeText, messages[0].Type)
	s.Contains(messages[0].Text, "สมชาย")
	s.Equal(entity.ReplyTypeCarousel, messages[1].Type)
	s.NotEmpty(messages[1].Recipes)
	s.LessOrEqual(len(messages[1].Recipes), 5)
	s.Equal(menuUsageText, messages[2].Text)
}

func (s *ResolverSuite) TestShowAllDishesListsPrimaryCollection() {
	s.seedSession(nil)

	s.resolver.HandleEvent(context.Background(), s.textEvent("รายการอาหาร"))

	sent := s.messenger.sent()
	s.Require().Len(sent, 1)
	messages := sent[0].messages
	s.Require().Len(messages, 2)

	s.Contains(messages[0].Text, "3 รายการ")
	s.Require().Equal(entity.ReplyTypeCarousel, messages[1].Type)
	for _, r := range messages[1].Recipes {
		s.Equal(entity.SourceIsanDishes, r.Source, "dish list only covers the primary collection")
	}
}

func (s *ResolverSuite) TestPopularQueriesEmpty() {
	s.seedSession(nil)

	s.resolver.HandleEvent(context.Background(), s.textEvent("คำถามที่ถามบ่อย"))

	s.Equal([]string{msgNoPopularQueries}, s.messenger.lastTexts())
}

func (s *ResolverSuite) TestPopularQueriesRankedListWithQuickReplies() {
	s.seedSession(nil)
	for i := 0; i < 7; i++ {
		s.queries.popular = append(s.queries.popular, entity.PopularQuery{
			Text:  fmt.Sprintf("คำถามที่ %d", i+1),
			Count: int64(10 - i),
		})
	}

	s.resolver.HandleEvent(context.Background(), s.textEvent("faq"))

	sent := s.messenger.sent()
	s.Require().Len(sent, 1)
	messages := sent[0].messages
	s.Require().Len(messages, 3)

	s.Contains(messages[1].Text, "1. คำถามที่ 1 (ถูกถาม 10 ครั้ง)")
	s.Contains(messages[1].Text, "7. คำถามที่ 7 (ถูกถาม 4 ครั้ง)")

	s.Equal(entity.ReplyTypeQuickReply, messages[2].Type)
	s.Len(messages[2].QuickItems, 5, "quick replies cover only the top five")
	s.Equal("คำถามที่ 1", messages[2].QuickItems[0].Text)
}

func (s *ResolverSuite) TestRecipeDetailCorpusHit() {
	s.seedSession(nil)

	s.resolver.HandleEvent(context.Background(), s.textEvent("วิธีทำลาบหมู"))

	sent := s.messenger.sent()
	s.Require().Len(sent, 1)
	messages := sent[0].messages
	s.Require().Len(messages, 2)

	s.Equal(entity.ReplyTypeImage, messages[0].Type)
	s.Equal("https://example.com/larb.jpg", messages[0].ImageURL)

	s.Equal(entity.ReplyTypeQuickReply, messages[1].Type)
	s.Contains(messages[1].Text, "📝 วิธีทำ ลาบหมู")
	s.Contains(messages[1].Text, "1. หมูสับ")
	s.Contains(messages[1].Text, "1. รวนหมู")
	s.Len(messages[1].QuickItems, 4)

	session := s.sessions.get(testUserID)
	s.Require().NotNil(session)
	s.Require().NotNil(session.FoodContext)
	s.Equal("ลาบหมู", session.FoodContext.Name)

	s.Eventually(func() bool {
		refs := s.clicks.clickedRefs()
		return len(refs) == 1 && refs[0].ID == "d1"
	}, time.Second, 10*time.Millisecond, "corpus hit must record a click")
}

func (s *ResolverSuite) TestRecipeDetailCorpusMissUsesGenerative() {
	s.seedSession(nil)

	s.resolver.HandleEvent(context.Background(), s.textEvent("วิธีทำแกงเปรอะ"))

	s.Require().Len(s.gemini.foodPrompts, 1)
	s.Contains(s.gemini.foodPrompts[0], "แกงเปรอะ")
	s.Equal([]string{"คำตอบจากโมเดล"}, s.messenger.lastTexts())

	session := s.sessions.get(testUserID)
	s.Require().NotNil(session)
	s.Require().NotNil(session.FoodContext)
	s.Equal("แกงเปรอะ", session.FoodContext.Name)
	s.Equal(entity.SourceGeminiGenerated, session.FoodContext.Source)

	s.Empty(s.clicks.clickedRefs(), "generated recipes are not click-tracked")
}

func (s *ResolverSuite) TestRecipeDetailSubstringNameIsNotAHit() {
	s.seedSession(nil)

	// "ลาบ" alone is not an exact corpus name; the detail command must not
	// loosely match "ลาบหมู".
	s.resolver.HandleEvent(context.Background(), s.textEvent("วิธีทำลาบ"))

	s.Require().Len(s.gemini.foodPrompts, 1)
	s.Empty(s.clicks.clickedRefs())
}
