package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/models"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	VectorSize int
	Database   string
	UseTLS     bool
	Timeout    time.Duration
}

// milvusVectorStore 向量存Milvus，分块正文仍落在PostgreSQL
type milvusVectorStore struct {
	milvusClient client.Client
	db           *gorm.DB
	collection   string
	vectorSize   int
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(db *gorm.DB, opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "document_chunks"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	store := &milvusVectorStore{
		milvusClient: milvusClient,
		db:           db,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
	}
	if err := store.ensureCollection(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "user_id",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	var index entity.Index
	index, err = entity.NewIndexHNSW(entity.COSINE, 8, 64)
	if err != nil {
		index, err = entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		// 索引创建失败不影响写入，检索会退化为暴力搜索
		logger.Warn("failed to create milvus index",
			zap.String("collection", s.collection),
			zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) InsertChunk(ctx context.Context, chunk VectorChunk) (uint, error) {
	if len(chunk.Embedding) == 0 {
		return 0, fmt.Errorf("embedding is empty")
	}
	if len(chunk.Embedding) != s.vectorSize {
		return 0, fmt.Errorf("embedding dimension mismatch: got %d want %d", len(chunk.Embedding), s.vectorSize)
	}

	// 分块正文先落库，拿到chunk_id后再写Milvus
	record := models.DocumentChunk{
		DocumentID: chunk.DocumentID,
		Content:    chunk.Text,
		ChunkIndex: chunk.Index,
		CreateTime: time.Now(),
	}
	if err := s.db.WithContext(ctx).Omit("Embedding").Create(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to insert chunk: %w", err)
	}

	chunkIDColumn := entity.NewColumnInt64("chunk_id", []int64{int64(record.ChunkID)})
	documentIDColumn := entity.NewColumnInt64("document_id", []int64{int64(chunk.DocumentID)})
	userIDColumn := entity.NewColumnInt64("user_id", []int64{int64(chunk.UserID)})
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, [][]float32{chunk.Embedding})

	_, err := s.milvusClient.Insert(ctx, s.collection, "", chunkIDColumn, documentIDColumn, userIDColumn, vectorColumn)
	if err != nil {
		return 0, fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush milvus collection",
			zap.String("collection", s.collection),
			zap.Error(err))
	}

	return record.ChunkID, nil
}

func (s *milvusVectorStore) DeleteDocument(ctx context.Context, documentID uint) error {
	expr := fmt.Sprintf("document_id == %d", documentID)
	if err := s.milvusClient.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("milvus delete failed: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentChunk{}).Error; err != nil {
		return err
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush milvus collection after delete",
			zap.String("collection", s.collection),
			zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(req.QueryEmbedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		fmt.Sprintf("user_id == %d", req.UserID),
		[]string{"chunk_id", "document_id"},
		[]entity.Vector{queryVector},
		"vector",
		entity.COSINE,
		req.Limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}
	if len(searchResults) == 0 {
		return []SearchMatch{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchMatch{}, nil
	}

	var chunkIDs []int64
	var documentIDs []int64
	for _, field := range result.Fields {
		switch field.Name() {
		case "chunk_id":
			if val, ok := field.(*entity.ColumnInt64); ok {
				chunkIDs = val.Data()
			}
		case "document_id":
			if val, ok := field.(*entity.ColumnInt64); ok {
				documentIDs = val.Data()
			}
		}
	}

	matches := make([]SearchMatch, 0, result.ResultCount)
	ids := make([]uint, 0, result.ResultCount)
	for i := 0; i < result.ResultCount && i < len(chunkIDs); i++ {
		match := SearchMatch{
			ChunkID: uint(chunkIDs[i]),
		}
		if i < len(documentIDs) {
			match.DocumentID = uint(documentIDs[i])
		}
		if i < len(result.Scores) {
			// COSINE返回相似度分数，换算成距离保持排序语义一致
			match.Distance = 1 - float64(result.Scores[i])
		}
		matches = append(matches, match)
		ids = append(ids, match.ChunkID)
	}

	// 回表取分块正文和文档名
	var rows []struct {
		ChunkID      uint
		Content      string
		DocumentName string
	}
	err = s.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.chunk_id, document_chunks.content, documents.name AS document_name").
		Joins("JOIN documents ON document_chunks.document_id = documents.document_id").
		Where("document_chunks.chunk_id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk contents: %w", err)
	}

	contentByID := make(map[uint]struct{ content, name string }, len(rows))
	for _, row := range rows {
		contentByID[row.ChunkID] = struct{ content, name string }{row.Content, row.DocumentName}
	}
	for i := range matches {
		if row, ok := contentByID[matches[i].ChunkID]; ok {
			matches[i].Content = row.content
			matches[i].DocumentName = row.name
		}
	}

	return matches, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
