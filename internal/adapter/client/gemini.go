package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"isanbot/internal/domain/entity"
)

const geminiSystemPrompt = "คุณคือผู้ช่วยผู้เชี่ยวชาญด้านอาหารอีสาน ตอบคำถามเกี่ยวกับอาหารอีสานเป็นภาษาไทยอย่างสุภาพและกระชับ " +
	"หากคำถามไม่เกี่ยวกับอาหารหรือการทำอาหาร ให้ตอบว่า \"ขอโทษค่ะ ดิฉันตอบได้เฉพาะคำถามเกี่ยวกับอาหารอีสานเท่านั้นค่ะ\""

// GeminiClient answers free-form questions with the configured Gemini
// model. Prompts are assembled here so usecases stay model-agnostic.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, projectID, location, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func NewGeminiClientFromClient(c *genai.Client, model string) *GeminiClient {
	return &GeminiClient{
		client: c,
		model:  model,
	}
}

func (g *GeminiClient) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", entity.ErrProviderTimeout
		}
		return "", fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", entity.ErrProviderUnavailable
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiClient) TextOnly(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, genai.Text(prompt))
}

// FoodQuery answers a question grounded on the recipe corpus, plus the
// active conversation dish when there is one.
func (g *GeminiClient) FoodQuery(ctx context.Context, prompt string, recipes []entity.Recipe, foodCtx *entity.FoodContext) (string, error) {
	var b strings.Builder
	b.WriteString(geminiSystemPrompt)
	b.WriteString("\n\n")

	if len(recipes) > 0 {
		b.WriteString("รายการอาหารอีสานที่มีข้อมูล:\n")
		for _, r := range recipes {
			b.WriteString("- ")
			b.WriteString(r.Name)
			if r.Description != "" {
				b.WriteString(": ")
				b.WriteString(r.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeFoodContext(&b, foodCtx)

	b.WriteString("คำถาม: ")
	b.WriteString(prompt)
	return g.generate(ctx, genai.Text(b.String()))
}

// ContinueConversation answers a follow-up question inside the context of
// the dish the user is already talking about.
func (g *GeminiClient) ContinueConversation(ctx context.Context, prompt string, foodCtx *entity.FoodContext) (string, error) {
	var b strings.Builder
	b.WriteString(geminiSystemPrompt)
	b.WriteString("\n\nผู้ใช้กำลังสนทนาเกี่ยวกับอาหารต่อไปนี้ ให้ตอบคำถามโดยอ้างอิงอาหารนี้:\n")
	writeFoodContext(&b, foodCtx)
	b.WriteString("คำถามต่อเนื่อง: ")
	b.WriteString(prompt)
	return g.generate(ctx, genai.Text(b.String()))
}

// Multimodal identifies the dish in a user-sent photo.
func (g *GeminiClient) Multimodal(ctx context.Context, image []byte) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText("นี่คือรูปอาหาร ช่วยบอกว่าน่าจะเป็นอาหารอีสานชื่ออะไร พร้อมอธิบายสั้น ๆ และวิธีทำคร่าว ๆ เป็นภาษาไทย"),
		genai.NewPartFromBytes(image, "image/jpeg"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return g.generate(ctx, contents)
}

func writeFoodContext(b *strings.Builder, foodCtx *entity.FoodContext) {
	if foodCtx == nil {
		return
	}
	b.WriteString("อาหารที่กำลังสนทนา: ")
	b.WriteString(foodCtx.Name)
	b.WriteString("\n")
	if foodCtx.Description != "" {
		b.WriteString("คำอธิบาย: ")
		b.WriteString(foodCtx.Description)
		b.WriteString("\n")
	}
	if len(foodCtx.Ingredients) > 0 {
		b.WriteString("วัตถุดิบ: ")
		b.WriteString(strings.Join(foodCtx.Ingredients, ", "))
		b.WriteString("\n")
	}
	if len(foodCtx.Steps) > 0 {
		b.WriteString("วิธีทำ:\n")
		for i, step := range foodCtx.Steps {
			fmt.Fprintf(b, "%d. %s\n", i+1, step)
		}
	}
	b.WriteString("\n")
}
