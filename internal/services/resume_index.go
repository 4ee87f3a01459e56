package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"careercoach/api/internal/config"
)

const (
	resumeChunkSize    = 800
	resumeChunkOverlap = 120
	embeddingSize      = 768
)

// ResumeIndex keeps embeddings of each user's saved resume so that
// improvement prompts can quote related parts of it.
type ResumeIndex interface {
	InitCollection(ctx context.Context) error
	IndexResume(ctx context.Context, userID uuid.UUID, content string) error
	SearchRelated(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchResult, error)
}

type SearchResult struct {
	ID    string
	Score float32
	Text  string
}

type qdrantResumeIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	chunker        TextChunker
	collectionName string
	logger         *zap.Logger
}

func NewResumeIndex(cfg config.QdrantConfig, embedder Embedder, logger *zap.Logger) (ResumeIndex, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantResumeIndex{
		client:         client,
		embedder:       embedder,
		chunker:        NewTextChunker(),
		collectionName: cfg.Collection,
		logger:         logger.Named("resume_index"),
	}, nil
}

func (q *qdrantResumeIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// IndexResume replaces every point of the user with fresh chunks of content.
func (q *qdrantResumeIndex) IndexResume(ctx context.Context, userID uuid.UUID, content string) error {
	if err := q.deleteUser(ctx, userID); err != nil {
		return err
	}

	chunks := q.chunker.ChunkText(content, resumeChunkSize, resumeChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := q.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"user_id": userID.String(),
				"text":    chunk,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.logger.Debug("resume indexed", zap.String("user_id", userID.String()), zap.Int("chunks", len(points)))
	return nil
}

func (q *qdrantResumeIndex) SearchRelated(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         userFilter(userID),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{
			ID:    point.GetId().GetUuid(),
			Score: point.GetScore(),
		}
		if text, ok := point.GetPayload()["text"]; ok {
			result.Text = text.GetStringValue()
		}
		results = append(results, result)
	}

	return results, nil
}

func (q *qdrantResumeIndex) deleteUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: userFilter(userID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete previous resume points: %w", err)
	}
	return nil
}

func userFilter(userID uuid.UUID) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID.String()),
		},
	}
}
