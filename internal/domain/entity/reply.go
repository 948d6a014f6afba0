package entity

// Reply payloads produced by the usecase layer. The platform adapter
// renders them into concrete LINE messages (text, flex carousel, quick
// reply menu) and enforces delivery limits.

const (
	ReplyTypeText       = "text"
	ReplyTypeImage      = "image"
	ReplyTypeCarousel   = "carousel"
	ReplyTypeQuickReply = "quick_reply"
)

// QuickReplyItem is one suggested follow-up message.
type QuickReplyItem struct {
	Label string
	Text  string
}

// ReplyMessage is one outbound message. Exactly the fields for its Type are
// set: Text for text and quick_reply, ImageURL for image, Recipes for
// carousel.
type ReplyMessage struct {
	Type       string
	Text       string
	ImageURL   string
	Recipes    []Recipe
	QuickItems []QuickReplyItem
}

// TextReply builds a plain text message.
func TextReply(text string) ReplyMessage {
	return ReplyMessage{Type: ReplyTypeText, Text: text}
}

// ImageReply builds an image message.
func ImageReply(url string) ReplyMessage {
	return ReplyMessage{Type: ReplyTypeImage, ImageURL: url}
}

// CarouselReply builds a recipe carousel.
func CarouselReply(recipes []Recipe) ReplyMessage {
	return ReplyMessage{Type: ReplyTypeCarousel, Recipes: recipes}
}

// QuickReply builds a text message with suggested follow-ups.
func QuickReply(text string, items []QuickReplyItem) ReplyMessage {
	return ReplyMessage{Type: ReplyTypeQuickReply, Text: text, QuickItems: items}
}
