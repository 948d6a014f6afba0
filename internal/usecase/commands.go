package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"isanbot/internal/classify"
	"isanbot/internal/domain/entity"
)

const menuUsageText = "💡 วิธีใช้งาน:\n" +
	"1. เลือกเมนูที่สนใจเพื่อดูวิธีทำ\n" +
	"2. พิมพ์ \"วิธีทำ + ชื่อเมนู\" เพื่อดูสูตรโดยตรง\n" +
	"3. พิมพ์ \"รายการอาหาร\" เพื่อดูอาหารทั้งหมด\n" +
	"4. พิมพ์ \"คำถามที่ถามบ่อย\" เพื่อดูอันดับคำถามที่ถูกถามบ่อย\n" +
	"5. พิมพ์ \"reset\" เพื่อเริ่มต้นใหม่"

// handleMenu replies with a welcome, up to 5 recommended recipes and usage
// instructions.
func (r *Resolver) handleMenu(ctx context.Context, event entity.Event, session *entity.UserSession) error {
	recommended := r.recommender.Recommend(ctx, event.Source.UserID, 5)

	welcome := fmt.Sprintf("สวัสดีค่ะ %s 👋\nยินดีต้อนรับสู่บอทสูตรอาหารอีสาน!", session.Profile.DisplayName)
	messages := []entity.ReplyMessage{entity.TextReply(welcome)}
	if len(recommended) > 0 {
		messages = append(messages, entity.CarouselReply(recommended))
	}
	messages = append(messages, entity.TextReply(menuUsageText))

	if err := r.reply(ctx, event, messages...); err != nil {
		r.log.Error().Err(err).Msg("menu reply failed")
		return r.reply(ctx, event, entity.TextReply(msgMenuError))
	}
	return nil
}

// handleShowAllDishes lists the primary collection as a carousel. The
// replier caps the carousel at the platform's 10-item limit.
func (r *Resolver) handleShowAllDishes(ctx context.Context, event entity.Event) error {
	dishes, err := r.recipes.Primary(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("primary collection load failed")
		return r.reply(ctx, event, entity.TextReply(msgDishListError))
	}

	header := fmt.Sprintf("📋 รายการอาหารอีสานทั้งหมด %d รายการ:", len(dishes))
	return r.reply(ctx, event,
		entity.TextReply(header),
		entity.CarouselReply(dishes),
	)
}

// handlePopularQueries lists the top asked questions with quick replies for
// the top five.
func (r *Resolver) handlePopularQueries(ctx context.Context, event entity.Event) error {
	popular, err := r.queries.PopularQueries(ctx, 10)
	if err != nil {
		r.log.Error().Err(err).Msg("popular queries load failed")
		return r.reply(ctx, event, entity.TextReply(msgFaqError))
	}
	if len(popular) == 0 {
		return r.reply(ctx, event, entity.TextReply(msgNoPopularQueries))
	}

	var list strings.Builder
	for i, q := range popular {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. %s (ถูกถาม %d ครั้ง)", i+1, q.Text, q.Count)
	}

	messages := []entity.ReplyMessage{
		entity.TextReply("🔍 คำถามยอดนิยม 10 อันดับ:"),
		entity.TextReply(list.String()),
	}

	top := popular
	if len(top) > 5 {
		top = top[:5]
	}
	items := make([]entity.QuickReplyItem, 0, len(top))
	for _, q := range top {
		label := q.Text
		if len([]rune(label)) > 20 {
			label = string([]rune(label)[:17]) + "..."
		}
		items = append(items, entity.QuickReplyItem{Label: label, Text: q.Text})
	}
	if len(items) > 0 {
		messages = append(messages, entity.QuickReply("ต้องการถามคำถามใดต่อไปหรือไม่?", items))
	}

	return r.reply(ctx, event, messages...)
}

// handleRecipeDetail answers a "how to make X" command. A corpus hit
// replies with structured detail and captures the recipe as context; a
// miss falls through to the generative provider with a detail-seeking
// prompt and captures a synthetic context either way.
func (r *Resolver) handleRecipeDetail(ctx context.Context, event entity.Event, name string) error {
	userID := event.Source.UserID

	recipes, err := r.recipes.All(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("corpus load failed")
		return r.reply(ctx, event, entity.TextReply(msgRecipeDetailErr))
	}

	if recipe := matchRecipeExact(recipes, name); recipe != nil {
		r.log.Info().Str("recipe", recipe.ID).Str("collection", recipe.Source).Msg("recipe found")

		ref := entity.RecipeRef{ID: recipe.ID, Source: recipe.Source}
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := r.clicks.TrackClick(bgCtx, userID, ref); err != nil {
				r.log.Warn().Err(err).Msg("click tracking failed")
			}
			if err := r.clicks.TrackView(bgCtx, ref); err != nil {
				r.log.Warn().Err(err).Msg("view tracking failed")
			}
		}()

		if err := r.reply(ctx, event, recipeDetailMessages(recipe)...); err != nil {
			return err
		}
		r.captureContext(ctx, userID, FoodContextFromRecipe(recipe))
		return nil
	}

	// Not in the corpus: ask the generative provider for a full recipe.
	prompt := fmt.Sprintf("ช่วยสอนวิธีทำ%s อย่างละเอียด พร้อมส่วนประกอบ ขั้นตอน และเคล็ดลับ", name)
	response, err := r.gemini.FoodQuery(ctx, prompt, recipes, nil)
	if err != nil {
		r.log.Error().Err(err).Msg("generative recipe detail failed")
		return r.reply(ctx, event, entity.TextReply(msgRecipeDetailErr))
	}

	if classify.IsRejectionResponse(response, r.rejectionPhrases()) {
		r.log.Info().Msg("rejection response detected, retrying with explicit prompt")
		fallbackPrompt := fmt.Sprintf("อธิบายวิธีทำอาหารที่เรียกว่า%s ทั้งวัตถุดิบและขั้นตอนการทำอย่างละเอียด", name)
		response, err = r.gemini.TextOnly(ctx, fallbackPrompt)
		if err != nil {
			r.log.Error().Err(err).Msg("generative recipe detail retry failed")
			return r.reply(ctx, event, entity.TextReply(msgRecipeDetailErr))
		}
	}

	if err := r.reply(ctx, event, entity.TextReply(response)); err != nil {
		return err
	}
	r.captureContext(ctx, userID, &entity.FoodContext{
		Name:        name,
		Description: "อาหารชื่อ " + name,
		Source:      entity.SourceGeminiGenerated,
	})
	return nil
}

// recipeDetailMessages renders a corpus recipe as image + formatted detail
// text with follow-up quick replies.
func recipeDetailMessages(recipe *entity.Recipe) []entity.ReplyMessage {
	var messages []entity.ReplyMessage
	if recipe.ImageURL != "" {
		messages = append(messages, entity.ImageReply(recipe.ImageURL))
	}

	var detail strings.Builder
	fmt.Fprintf(&detail, "📝 วิธีทำ %s\n\n", recipe.Name)
	detail.WriteString("🛒 วัตถุดิบ:\n")
	for i, ingredient := range recipe.Ingredients {
		fmt.Fprintf(&detail, "%d. %s\n", i+1, ingredient)
	}
	detail.WriteString("\n🔪 วิธีทำ:\n")
	for i, step := range recipe.Steps {
		fmt.Fprintf(&detail, "%d. %s\n", i+1, step)
	}
	if recipe.YoutubeURL != "" {
		fmt.Fprintf(&detail, "\n🎬 วิดีโอสอนทำ: %s", recipe.YoutubeURL)
	}

	items := []entity.QuickReplyItem{
		{Label: "ใส่อะไรได้บ้าง", Text: "ใส่อะไรได้บ้าง"},
		{Label: "เก็บได้กี่วัน", Text: "เก็บได้กี่วัน"},
		{Label: "กินกับอะไร", Text: "กินกับอะไรได้บ้าง"},
		{Label: "เมนู", Text: "เมนู"},
	}
	messages = append(messages, entity.ReplyMessage{
		Type:       entity.ReplyTypeQuickReply,
		Text:       detail.String(),
		QuickItems: items,
	})
	return messages
}
