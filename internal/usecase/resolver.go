package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"isanbot/internal/classify"
	"isanbot/internal/config"
	"isanbot/internal/domain/entity"
	"isanbot/internal/domain/repository"
)

// Fixed user-facing replies.
const (
	msgResetAck         = "ระบบได้รีเซ็ตการสนทนาแล้ว คุณสามารถสอบถามได้ตามปกติ"
	msgGenericError     = "ขออภัย เกิดข้อผิดพลาด กรุณาลองใหม่อีกครั้ง"
	msgAnswerError      = "ขออภัย ไม่สามารถตอบคำถามได้ในขณะนี้ กรุณาลองใหม่อีกครั้ง"
	msgImageError       = "ขออภัย เกิดข้อผิดพลาดในการวิเคราะห์ภาพ กรุณาลองใหม่อีกครั้ง"
	msgUnsupportedType  = "ขออภัย ฉันยังไม่รองรับข้อความประเภทนี้"
	msgMenuError        = "ขออภัย ไม่สามารถแสดงเมนูได้ในขณะนี้ กรุณาลองใหม่ภายหลัง"
	msgDishListError    = "ขออภัย ไม่สามารถแสดงรายการอาหารได้ในขณะนี้ กรุณาลองใหม่ภายหลัง"
	msgFaqError         = "ขออภัย ไม่สามารถแสดงคำถามยอดนิยมได้ในขณะนี้ กรุณาลองใหม่ภายหลัง"
	msgRecipeDetailErr  = "ขออภัย เกิดข้อผิดพลาดในการแสดงรายละเอียดเมนู กรุณาลองใหม่อีกครั้ง"
	msgNoPopularQueries = "ยังไม่มีคำถามยอดนิยมในขณะนี้ โปรดกลับมาตรวจสอบในภายหลัง"
)

// Answer source tags recorded in the query log.
const (
	answerSourceIntent     = "dialogflow"
	answerSourceGemini     = "gemini"
	answerSourceGeminiCtx  = "gemini_with_context"
	answerSourceFallback   = "gemini_fallback"
	answerSourceMultimodal = "gemini_multimodal"
)

// Resolver is the per-message answer resolution state machine: command
// short-circuit, context continuation, structured-intent provider,
// generative provider, then a single rejection-driven retry.
type Resolver struct {
	sessions  repository.SessionStore
	history   repository.HistoryStore
	recipes   repository.RecipeStore
	clicks    repository.ClickStore
	queries   repository.QueryLog
	intent    repository.IntentProvider
	gemini    repository.GenerativeProvider
	messenger repository.Messenger

	finder      *ContextFinder
	recommender *Recommender

	cfg *config.Config
	now repository.Clock
	log zerolog.Logger
}

func NewResolver(
	sessions repository.SessionStore,
	history repository.HistoryStore,
	recipes repository.RecipeStore,
	clicks repository.ClickStore,
	queries repository.QueryLog,
	intent repository.IntentProvider,
	gemini repository.GenerativeProvider,
	messenger repository.Messenger,
	finder *ContextFinder,
	recommender *Recommender,
	cfg *config.Config,
	log zerolog.Logger,
) *Resolver {
	return &Resolver{
		sessions:    sessions,
		history:     history,
		recipes:     recipes,
		clicks:      clicks,
		queries:     queries,
		intent:      intent,
		gemini:      gemini,
		messenger:   messenger,
		finder:      finder,
		recommender: recommender,
		cfg:         cfg,
		now:         time.Now,
		log:         log,
	}
}

// WithClock pins the resolver's notion of now.
func (r *Resolver) WithClock(now repository.Clock) *Resolver {
	r.now = now
	return r
}

// HandleEvent processes one webhook event to completion. Events older than
// the reply window are dropped without a reply; the reply token is presumed
// expired.
func (r *Resolver) HandleEvent(ctx context.Context, event entity.Event) {
	eventTime := time.UnixMilli(event.Timestamp)
	age := r.now().Sub(eventTime)
	if age > r.cfg.EventMaxAge {
		r.log.Warn().Dur("age", age).Msg("event too old, reply token presumed expired, skipping")
		return
	}

	if event.Type != entity.EventTypeMessage {
		r.log.Debug().Str("type", event.Type).Msg("ignoring non-message event")
		return
	}

	userID := event.Source.UserID
	session := r.ensureSession(ctx, userID)

	var err error
	switch event.Message.Type {
	case entity.MessageTypeText:
		err = r.handleText(ctx, event, session)
	case entity.MessageTypeImage:
		err = r.handleImage(ctx, event)
	default:
		err = r.reply(ctx, event, entity.TextReply(msgUnsupportedType))
	}

	if err != nil {
		r.log.Error().Err(err).Str("user", userID).Msg("event processing failed")
		// Fixed apology, but only while the reply token is still usable.
		if r.now().Sub(eventTime) <= r.cfg.EventMaxAge {
			if replyErr := r.reply(ctx, event, entity.TextReply(msgGenericError)); replyErr != nil {
				r.log.Error().Err(replyErr).Msg("cannot send error reply")
			}
		} else {
			r.log.Warn().Msg("skipping error reply, reply token expired")
		}
	}
}

// handleText runs the fallback state machine for a text message.
func (r *Resolver) handleText(ctx context.Context, event entity.Event, session *entity.UserSession) error {
	text := event.Message.Text
	userID := event.Source.UserID

	// Step 1: command short-circuit.
	command, arg := classify.ClassifyCommand(text)
	switch command {
	case classify.CommandReset:
		r.resetSession(ctx, userID)
		return r.reply(ctx, event, entity.TextReply(msgResetAck))
	case classify.CommandMenu:
		return r.handleMenu(ctx, event, session)
	case classify.CommandShowAllDishes:
		return r.handleShowAllDishes(ctx, event)
	case classify.CommandFaq:
		return r.handlePopularQueries(ctx, event)
	case classify.CommandRecipeDetail:
		return r.handleRecipeDetail(ctx, event, arg)
	}

	// Step 2: re-validate the active context against the new query. A
	// query can end one topic and establish a new one in the same turn.
	foodCtx := session.FoodContext
	if foodCtx != nil && !IsRelatedToContext(text, foodCtx) {
		r.log.Info().Str("dish", foodCtx.Name).Msg("query unrelated to active context, auto resetting")
		r.resetSession(ctx, userID)
		foodCtx = nil
	}

	// Step 3: popularity tracking is fire-and-forget; it never blocks the
	// reply.
	if classify.IsFoodRelated(text) {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := r.queries.TrackPopularQuery(bgCtx, text); err != nil {
				r.log.Warn().Err(err).Msg("popular query tracking failed")
			}
		}()
	}

	// Step 4: recover an implicit topic from history for context-dependent
	// questions.
	if foodCtx == nil && classify.IsGenericFoodQuestion(text) {
		recovered, err := r.finder.FromHistory(ctx, userID)
		if err != nil {
			r.log.Warn().Err(err).Msg("history context recovery failed")
		} else if recovered != nil {
			r.log.Info().Str("dish", recovered.Name).Msg("recovered food context from history")
			r.captureContext(ctx, userID, recovered)
			foodCtx = recovered
		}
	}

	// Step 5: context continuation has no fallback chain.
	if foodCtx != nil {
		response, err := r.gemini.ContinueConversation(ctx, text, foodCtx)
		if err != nil {
			r.log.Error().Err(err).Msg("context continuation failed")
			return r.reply(ctx, event, entity.TextReply(msgAnswerError))
		}
		r.saveQuery(text, response, answerSourceGeminiCtx)
		r.appendHistory(userID, text)
		return r.reply(ctx, event, entity.TextReply(response))
	}

	// Step 6: no context; the query joins the history window regardless of
	// which provider ends up answering it.
	r.appendHistory(userID, text)

	directDish := classify.IsDirectDishQuery(text)

	// Step 7: structured-intent provider.
	if r.intent != nil && r.intent.IsConfigured() {
		if response, answered := r.tryIntentProvider(ctx, text, userID, directDish); answered {
			r.saveQuery(text, response, answerSourceIntent)
			return r.reply(ctx, event, entity.TextReply(response))
		}
	}

	// Steps 8-10: generative provider, with one rejection-driven retry.
	return r.resolveGenerative(ctx, event, text, directDish)
}

// tryIntentProvider runs the structured-intent tier. The second return is
// false whenever the machine should fall through to the generative tier.
func (r *Resolver) tryIntentProvider(ctx context.Context, text, userID string, directDish bool) (string, bool) {
	// External bias: direct dish queries are trusted at a lower confidence
	// than free-form ones. This is separate from the provider's internal
	// acceptance floor and is deliberately kept as its own tunable.
	trustThreshold := r.cfg.GenericQueryConfidence
	if directDish {
		trustThreshold = r.cfg.DirectQueryConfidence
	}

	result := r.intent.DetectIntent(ctx, text, userID)
	if !result.Success {
		r.log.Warn().Str("error_type", result.ErrorType).Str("message", result.Message).
			Msg("intent provider failed, falling back to generative provider")
		return "", false
	}
	if !result.Found {
		r.log.Info().Msg("no intent found, falling back to generative provider")
		return "", false
	}
	if classify.IsRejectionResponse(result.Response, r.rejectionPhrases()) {
		r.log.Info().Str("intent", result.Intent).Msg("intent provider returned rejection response")
		return "", false
	}

	r.log.Info().
		Str("intent", result.Intent).
		Float32("confidence", result.Confidence).
		Bool("strong_match", result.Confidence >= trustThreshold).
		Msg("using intent provider response")

	if directDish {
		r.captureRecipeContext(ctx, userID, text)
	}
	return result.Response, true
}

// resolveGenerative runs the generative tier with the full corpus as
// grounding material, retrying once with a plainer prompt on rejection.
func (r *Resolver) resolveGenerative(ctx context.Context, event entity.Event, text string, directDish bool) error {
	userID := event.Source.UserID

	recipes, err := r.recipes.All(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("corpus load failed, answering without recipe grounding")
		recipes = nil
	}

	prompt := text
	if directDish {
		prompt = fmt.Sprintf("อธิบายเกี่ยวกับอาหารอีสานที่เรียกว่า \"%s\" ทั้งส่วนประกอบ วิธีทำ รสชาติ และวิธีรับประทาน", text)
		if recipe := matchRecipeForQuery(recipes, text); recipe != nil {
			r.captureContext(ctx, userID, FoodContextFromRecipe(recipe))
		}
	}

	response, err := r.gemini.FoodQuery(ctx, prompt, recipes, nil)
	if err != nil {
		return fmt.Errorf("generative provider: %w", err)
	}

	if classify.IsRejectionResponse(response, r.rejectionPhrases()) && (directDish || classify.IsFoodRelated(text)) {
		r.log.Info().Msg("rejection response detected, retrying with explicit prompt")
		fallbackPrompt := fmt.Sprintf("อธิบายอาหารอีสานชื่อ \"%s\" และวิธีทำโดยละเอียด", text)
		fallbackResponse, err := r.gemini.TextOnly(ctx, fallbackPrompt)
		if err != nil {
			return fmt.Errorf("generative retry: %w", err)
		}
		r.saveQuery(text, fallbackResponse, answerSourceFallback)
		return r.reply(ctx, event, entity.TextReply(fallbackResponse))
	}

	r.saveQuery(text, response, answerSourceGemini)
	return r.reply(ctx, event, entity.TextReply(response))
}

// handleImage analyzes an image message with the multimodal provider.
func (r *Resolver) handleImage(ctx context.Context, event entity.Event) error {
	content, err := r.messenger.Content(ctx, event.Message.ID)
	if err != nil {
		r.log.Error().Err(err).Str("message", event.Message.ID).Msg("image content fetch failed")
		return r.reply(ctx, event, entity.TextReply(msgImageError))
	}

	response, err := r.gemini.Multimodal(ctx, content)
	if err != nil {
		r.log.Error().Err(err).Msg("multimodal analysis failed")
		return r.reply(ctx, event, entity.TextReply(msgImageError))
	}

	r.saveQuery("image_"+event.Message.ID, response, answerSourceMultimodal)
	return r.reply(ctx, event, entity.TextReply(response))
}

// reply delivers messages, retrying once on transport failure while the
// reply window is still open.
func (r *Resolver) reply(ctx context.Context, event entity.Event, messages ...entity.ReplyMessage) error {
	err := r.messenger.Reply(ctx, event.ReplyToken, messages)
	if err == nil {
		return nil
	}
	r.log.Warn().Err(err).Msg("reply delivery failed")

	if r.now().Sub(time.UnixMilli(event.Timestamp)) <= r.cfg.EventMaxAge {
		if retryErr := r.messenger.Reply(ctx, event.ReplyToken, messages); retryErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", entity.ErrTransportFailure, err)
}

// ensureSession loads the user's session, creating one on first contact.
// Profile fetch failures degrade to a minimal profile; a session read
// failure degrades to a transient in-memory session so the turn can still
// be answered.
func (r *Resolver) ensureSession(ctx context.Context, userID string) *entity.UserSession {
	session, err := r.sessions.Get(ctx, userID)
	if err == nil {
		return session
	}
	if !errors.Is(err, entity.ErrSessionNotFound) {
		r.log.Error().Err(err).Str("user", userID).Msg("session read failed")
		return &entity.UserSession{UserID: userID, Mode: entity.ModeDefault, Profile: entity.Profile{DisplayName: "User"}}
	}

	profile := entity.Profile{DisplayName: "User"}
	if fetched, err := r.messenger.Profile(ctx, userID); err != nil {
		r.log.Warn().Err(err).Str("user", userID).Msg("profile fetch failed, using minimal profile")
	} else {
		profile = *fetched
	}

	session = &entity.UserSession{
		UserID:  userID,
		Profile: profile,
		Mode:    entity.ModeDefault,
		Created: r.now(),
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		r.log.Error().Err(err).Str("user", userID).Msg("session create failed")
	}
	return session
}

// updateSession applies mutate under the store's optimistic versioning,
// retrying once on a version conflict. After that the last writer wins;
// concurrent turns from the same user race by design.
func (r *Resolver) updateSession(ctx context.Context, userID string, mutate func(*entity.UserSession)) {
	for attempt := 0; attempt < 2; attempt++ {
		session, err := r.sessions.Get(ctx, userID)
		if err != nil {
			r.log.Warn().Err(err).Str("user", userID).Msg("session update read failed")
			return
		}
		mutate(session)
		err = r.sessions.Update(ctx, session)
		if err == nil {
			return
		}
		if !errors.Is(err, entity.ErrVersionConflict) {
			r.log.Warn().Err(err).Str("user", userID).Msg("session update failed")
			return
		}
	}
	r.log.Warn().Str("user", userID).Msg("session update lost version race twice, giving up")
}

func (r *Resolver) resetSession(ctx context.Context, userID string) {
	r.updateSession(ctx, userID, func(s *entity.UserSession) {
		s.Mode = entity.ModeDefault
		s.FoodContext = nil
	})
}

// captureContext snapshots a dish as the active topic and switches the
// session into conversation mode.
func (r *Resolver) captureContext(ctx context.Context, userID string, foodCtx *entity.FoodContext) {
	r.updateSession(ctx, userID, func(s *entity.UserSession) {
		s.FoodContext = foodCtx
		s.Mode = entity.ModeGemini
	})
}

// captureRecipeContext resolves a direct dish query against the corpus and
// captures the hit, if any, as the active topic.
func (r *Resolver) captureRecipeContext(ctx context.Context, userID, query string) {
	recipes, err := r.recipes.All(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("corpus load for context capture failed")
		return
	}
	if recipe := matchRecipeForQuery(recipes, query); recipe != nil {
		r.captureContext(ctx, userID, FoodContextFromRecipe(recipe))
	}
}

// appendHistory records the query; persistence failures never block a
// reply.
func (r *Resolver) appendHistory(userID, text string) {
	bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entry := entity.QueryHistoryEntry{Query: classify.Normalize(text), Timestamp: r.now()}
	if err := r.history.Append(bgCtx, userID, entry); err != nil {
		r.log.Warn().Err(err).Str("user", userID).Msg("history append failed")
	}
}

// saveQuery logs an answered question; persistence failures are swallowed.
func (r *Resolver) saveQuery(query, response, source string) {
	bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.queries.SaveUserQuery(bgCtx, query, response, source); err != nil {
		r.log.Warn().Err(err).Str("source", source).Msg("query log write failed")
	}
}

func (r *Resolver) rejectionPhrases() []string {
	if len(r.cfg.RejectionPhrases) > 0 {
		return r.cfg.RejectionPhrases
	}
	return classify.DefaultRejectionPhrases
}
