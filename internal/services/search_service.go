package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/docuchat/backend-go/internal/errors"
	"github.com/docuchat/backend-go/internal/knowledge"
	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/metrics"
	"github.com/docuchat/backend-go/internal/models"
)

// SearchResult 语义检索结果
type SearchResult struct {
	ChunkID      uint    `json:"chunk_id"`
	DocumentID   uint    `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Content      string  `json:"content"`
	Distance     float64 `json:"distance"`
}

// SearchService 用户知识库的语义检索
type SearchService struct {
	store    *DocumentStore
	embedder knowledge.Embedder
	vectors  knowledge.VectorStore
	topK     int
}

// NewSearchService 创建检索服务
func NewSearchService(store *DocumentStore, embedder knowledge.Embedder, vectors knowledge.VectorStore, topK int) *SearchService {
	if topK <= 0 {
		topK = 5
	}
	return &SearchService{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		topK:     topK,
	}
}

// Search 向量化查询后在用户范围内检索最相似分块。
// 没有命中是正常结果，返回空切片。
func (s *SearchService) Search(ctx context.Context, userID uint, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "query is required")
	}
	metrics.SearchRequests.Inc()

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		metrics.EmbeddingErrors.Inc()
		return nil, apperrors.NewEmbedError("failed to embed query").WithCause(err)
	}

	matches, err := s.vectors.Search(ctx, knowledge.VectorSearchRequest{
		UserID:         userID,
		QueryEmbedding: embedding,
		Limit:          s.topK,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("vector search failed").WithCause(err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, SearchResult{
			ChunkID:      m.ChunkID,
			DocumentID:   m.DocumentID,
			DocumentName: m.DocumentName,
			Content:      m.Content,
			Distance:     m.Distance,
		})
	}

	// 检索历史只是旁路记录，写入失败不影响结果
	record := &models.SearchRecord{
		UserID:      userID,
		Query:       query,
		ResultCount: len(results),
	}
	if err := s.store.CreateSearchRecord(ctx, record); err != nil {
		logger.Warn("failed to record search history",
			zap.Uint("userID", userID),
			zap.Error(err))
	}

	return results, nil
}
