package knowledge

import "context"

// VectorChunk 待入库的分块向量
type VectorChunk struct {
	DocumentID uint
	UserID     uint
	Index      int
	Text       string
	Embedding  []float32
}

// VectorSearchRequest 向量检索请求，检索范围限定在单个用户的文档内
type VectorSearchRequest struct {
	UserID         uint
	QueryEmbedding []float32
	Limit          int
}

// SearchMatch 检索命中结果，Distance为余弦距离，越小越相似
type SearchMatch struct {
	ChunkID      uint
	DocumentID   uint
	DocumentName string
	Content      string
	Distance     float64
}

// VectorStore 向量存储抽象
type VectorStore interface {
	InsertChunk(ctx context.Context, chunk VectorChunk) (uint, error)
	DeleteDocument(ctx context.Context, documentID uint) error
	Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error)
	Ready() bool
}
