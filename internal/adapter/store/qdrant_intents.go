package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"isanbot/internal/domain/entity"
)

// IntentMatch is one vector-search hit over the intent index.
type IntentMatch struct {
	IntentID    string
	DisplayName string
	Phrase      string
	Response    string
	Score       float32
}

// QdrantIntentIndex stores one point per training phrase, payload carrying
// the owning intent. Vector search over it drives structured intent
// detection.
type QdrantIntentIndex struct {
	client         *qdrant.Client
	collectionName string
	log            zerolog.Logger
}

func NewQdrantIntentIndex(client *qdrant.Client, collectionName string, log zerolog.Logger) *QdrantIntentIndex {
	return &QdrantIntentIndex{
		client:         client,
		collectionName: collectionName,
		log:            log,
	}
}

func (s *QdrantIntentIndex) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "intent_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		// Index may already exist from a previous run.
		s.log.Warn().Err(err).Msg("could not create intent_id index")
	}
	return nil
}

// Search returns the single closest training phrase, regardless of score;
// the caller decides whether the score clears its confidence floor.
func (s *QdrantIntentIndex) Search(ctx context.Context, vector []float32) (*IntentMatch, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}

	hit := res[0]
	payload := hit.Payload
	return &IntentMatch{
		IntentID:    payload["intent_id"].GetStringValue(),
		DisplayName: payload["display_name"].GetStringValue(),
		Phrase:      payload["training_phrase"].GetStringValue(),
		Response:    payload["response"].GetStringValue(),
		Score:       hit.Score,
	}, nil
}

// Upsert indexes every training phrase of the intent as its own point.
func (s *QdrantIntentIndex) Upsert(ctx context.Context, intent entity.Intent, vectors [][]float32) error {
	if len(vectors) != len(intent.TrainingPhrases) {
		return fmt.Errorf("vector count %d does not match phrase count %d", len(vectors), len(intent.TrainingPhrases))
	}

	response := ""
	if len(intent.Responses) > 0 {
		response = intent.Responses[0]
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for i, phrase := range intent.TrainingPhrases {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"intent_id":       intent.ID,
				"display_name":    intent.DisplayName,
				"training_phrase": phrase,
				"response":        response,
				"created_at":      time.Now().Unix(),
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	})
	return err
}

// List reassembles full intents from the per-phrase points.
func (s *QdrantIntentIndex) List(ctx context.Context) ([]entity.Intent, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collectionName,
		Limit:          qdrant.PtrOf(uint32(1024)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Intent)
	order := make([]string, 0)
	for _, p := range points {
		payload := p.Payload
		id := payload["intent_id"].GetStringValue()
		intent, ok := byID[id]
		if !ok {
			intent = &entity.Intent{
				ID:          id,
				DisplayName: payload["display_name"].GetStringValue(),
			}
			if resp := payload["response"].GetStringValue(); resp != "" {
				intent.Responses = []string{resp}
			}
			byID[id] = intent
			order = append(order, id)
		}
		if phrase := payload["training_phrase"].GetStringValue(); phrase != "" {
			intent.TrainingPhrases = append(intent.TrainingPhrases, phrase)
		}
	}

	intents := make([]entity.Intent, 0, len(order))
	for _, id := range order {
		intents = append(intents, *byID[id])
	}
	return intents, nil
}
