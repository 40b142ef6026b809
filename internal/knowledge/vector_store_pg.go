package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/models"
)

// PgVectorStore 基于pgvector扩展的向量存储，分块内容和向量存同一行
type PgVectorStore struct {
	db *gorm.DB
}

func NewPgVectorStore(db *gorm.DB) VectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) InsertChunk(ctx context.Context, chunk VectorChunk) (uint, error) {
	if len(chunk.Embedding) == 0 {
		return 0, fmt.Errorf("embedding is empty")
	}

	record := models.DocumentChunk{
		DocumentID: chunk.DocumentID,
		Content:    chunk.Text,
		ChunkIndex: chunk.Index,
		Embedding:  pgvector.NewVector(chunk.Embedding),
		CreateTime: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to insert chunk: %w", err)
	}
	return record.ChunkID, nil
}

func (s *PgVectorStore) DeleteDocument(ctx context.Context, documentID uint) error {
	return s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentChunk{}).Error
}

// Search 在数据库内按余弦距离排序返回最相似的分块。
// 只要求文档属于该用户，不过滤文档状态：部分入库的分块同样可检索。
func (s *PgVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	var rows []pgSearchRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT document_chunks.chunk_id,
		       document_chunks.document_id,
		       documents.name AS document_name,
		       document_chunks.content,
		       document_chunks.embedding <=> ? AS distance
		FROM document_chunks
		JOIN documents ON document_chunks.document_id = documents.document_id
		WHERE documents.user_id = ?
		ORDER BY distance
		LIMIT ?`,
		pgvector.NewVector(req.QueryEmbedding), req.UserID, req.Limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SearchMatch, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchMatch{
			ChunkID:      row.ChunkID,
			DocumentID:   row.DocumentID,
			DocumentName: row.DocumentName,
			Content:      row.Content,
			Distance:     row.Distance,
		})
	}
	return results, nil
}

func (s *PgVectorStore) Ready() bool {
	return s.db != nil
}

type pgSearchRow struct {
	ChunkID      uint
	DocumentID   uint
	DocumentName string
	Content      string
	Distance     float64
}
