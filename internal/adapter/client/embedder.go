package client

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"isanbot/internal/domain/entity"
)

// PhraseEmbedder vectorizes user queries and intent training phrases for
// similarity search against the intent index. One model serves both sides
// so query and phrase vectors live in the same space.
type PhraseEmbedder struct {
	model string
	embed func(ctx context.Context, model string, contents []*genai.Content) (*genai.EmbedContentResponse, error)
	log   zerolog.Logger
}

func NewPhraseEmbedder(ctx context.Context, projectID, location, model string, log zerolog.Logger) (*PhraseEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}
	return NewPhraseEmbedderFromClient(client, model, log), nil
}

func NewPhraseEmbedderFromClient(c *genai.Client, model string, log zerolog.Logger) *PhraseEmbedder {
	return &PhraseEmbedder{
		model: model,
		embed: func(ctx context.Context, model string, contents []*genai.Content) (*genai.EmbedContentResponse, error) {
			return c.Models.EmbedContent(ctx, model, contents, nil)
		},
		log: log,
	}
}

func (e *PhraseEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.embed(ctx, e.model, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		e.log.Warn().Str("model", e.model).Msg("embedding response carried no vectors")
		return nil, fmt.Errorf("%w: empty embedding response", entity.ErrProviderUnavailable)
	}
	return res.Embeddings[0].Values, nil
}
