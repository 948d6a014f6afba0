package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/rs/zerolog"

	"isanbot/internal/domain/entity"
)

const (
	maxReplyMessages  = 5
	maxCarouselItems  = 10
	carouselAltText   = "รายการอาหารแนะนำ"
	fallbackImageURL  = "https://via.placeholder.com/1024x678.png?text=Isan+Food"
	recipeButtonLabel = "วิธีทำ"
)

// LineMessenger delivers replies through the LINE Messaging API and
// enforces the platform caps (5 messages per reply, 10 carousel bubbles).
type LineMessenger struct {
	bot     *linebot.Client
	timeout time.Duration
	log     zerolog.Logger
}

func NewLineMessenger(channelSecret, channelToken string, timeout time.Duration, log zerolog.Logger) (*LineMessenger, error) {
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, err
	}
	return &LineMessenger{bot: bot, timeout: timeout, log: log}, nil
}

// isVerifyToken reports the dummy reply tokens LINE sends when verifying a
// webhook endpoint. Replying to them always fails.
func isVerifyToken(token string) bool {
	if token == "" {
		return true
	}
	return strings.Trim(token, "0") == "" || strings.Trim(token, "f") == ""
}

func (m *LineMessenger) Reply(ctx context.Context, replyToken string, messages []entity.ReplyMessage) error {
	if isVerifyToken(replyToken) {
		m.log.Debug().Msg("skipping reply to webhook verification token")
		return nil
	}
	if len(messages) == 0 {
		return nil
	}
	if len(messages) > maxReplyMessages {
		messages = messages[:maxReplyMessages]
	}

	rendered := make([]linebot.SendingMessage, 0, len(messages))
	for _, msg := range messages {
		rendered = append(rendered, m.render(msg))
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if _, err := m.bot.ReplyMessage(replyToken, rendered...).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrTransportFailure, err)
	}
	return nil
}

func (m *LineMessenger) render(msg entity.ReplyMessage) linebot.SendingMessage {
	switch msg.Type {
	case entity.ReplyTypeImage:
		return linebot.NewImageMessage(msg.ImageURL, msg.ImageURL)
	case entity.ReplyTypeCarousel:
		return m.renderCarousel(msg.Recipes)
	case entity.ReplyTypeQuickReply:
		text := linebot.NewTextMessage(msg.Text)
		if len(msg.QuickItems) == 0 {
			return text
		}
		buttons := make([]*linebot.QuickReplyButton, 0, len(msg.QuickItems))
		for _, item := range msg.QuickItems {
			buttons = append(buttons, linebot.NewQuickReplyButton("", linebot.NewMessageAction(item.Label, item.Text)))
		}
		return text.WithQuickReplies(linebot.NewQuickReplyItems(buttons...))
	default:
		return linebot.NewTextMessage(msg.Text)
	}
}

func (m *LineMessenger) renderCarousel(recipes []entity.Recipe) linebot.SendingMessage {
	if len(recipes) > maxCarouselItems {
		recipes = recipes[:maxCarouselItems]
	}

	bubbles := make([]*linebot.BubbleContainer, 0, len(recipes))
	for _, r := range recipes {
		imageURL := r.ImageURL
		if imageURL == "" {
			imageURL = fallbackImageURL
		}
		bubbles = append(bubbles, &linebot.BubbleContainer{
			Type: linebot.FlexContainerTypeBubble,
			Hero: &linebot.ImageComponent{
				Type:        linebot.FlexComponentTypeImage,
				URL:         imageURL,
				Size:        linebot.FlexImageSizeTypeFull,
				AspectRatio: linebot.FlexImageAspectRatioType20to13,
				AspectMode:  linebot.FlexImageAspectModeTypeCover,
			},
			Body: &linebot.BoxComponent{
				Type:   linebot.FlexComponentTypeBox,
				Layout: linebot.FlexBoxLayoutTypeVertical,
				Contents: []linebot.FlexComponent{
					&linebot.TextComponent{
						Type:   linebot.FlexComponentTypeText,
						Text:   r.Name,
						Weight: linebot.FlexTextWeightTypeBold,
						Size:   linebot.FlexTextSizeTypeXl,
						Wrap:   true,
					},
					&linebot.TextComponent{
						Type:  linebot.FlexComponentTypeText,
						Text:  r.Description,
						Size:  linebot.FlexTextSizeTypeSm,
						Color: "#8c8c8c",
						Wrap:  true,
					},
				},
			},
			Footer: &linebot.BoxComponent{
				Type:   linebot.FlexComponentTypeBox,
				Layout: linebot.FlexBoxLayoutTypeVertical,
				Contents: []linebot.FlexComponent{
					&linebot.ButtonComponent{
						Type:   linebot.FlexComponentTypeButton,
						Style:  linebot.FlexButtonStyleTypePrimary,
						Action: linebot.NewMessageAction(recipeButtonLabel, recipeButtonLabel+r.Name),
					},
				},
			},
		})
	}

	return linebot.NewFlexMessage(carouselAltText, &linebot.CarouselContainer{
		Type:     linebot.FlexContainerTypeCarousel,
		Contents: bubbles,
	})
}

func (m *LineMessenger) Profile(ctx context.Context, userID string) (*entity.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.bot.GetProfile(userID).WithContext(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrTransportFailure, err)
	}
	return &entity.Profile{
		DisplayName:   res.DisplayName,
		PictureURL:    res.PictureURL,
		StatusMessage: res.StatusMessage,
	}, nil
}

// Content downloads the binary payload of a user-sent message, typically
// an image for dish identification.
func (m *LineMessenger) Content(ctx context.Context, messageID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.bot.GetMessageContent(messageID).WithContext(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrTransportFailure, err)
	}
	defer res.Content.Close()

	data, err := io.ReadAll(res.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrTransportFailure, err)
	}
	return data, nil
}
