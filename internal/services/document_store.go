package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/models"
)

// DocumentStore 文档表的数据访问层
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore 创建文档存储
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create 创建文档记录
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.CreateTime = now
	doc.UpdateTime = now
	if doc.Status == "" {
		doc.Status = models.DocumentStatusPending
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Get 按ID获取文档，校验归属用户
func (s *DocumentStore) Get(ctx context.Context, userID, documentID uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByID 按ID获取文档，不限定用户（处理管道内部使用）
func (s *DocumentStore) GetByID(ctx context.Context, documentID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, documentID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List 按用户列出文档，按创建时间倒序
func (s *DocumentStore) List(ctx context.Context, userID uint) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("create_time DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus 更新文档状态
func (s *DocumentStore) UpdateStatus(ctx context.Context, documentID uint, status string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("document_id = ?", documentID).
		Updates(map[string]interface{}{
			"status":      status,
			"update_time": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// CountChunks 统计文档已入库的分块数
func (s *DocumentStore) CountChunks(ctx context.Context, documentID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

// CreateSearchRecord 记录一次检索
func (s *DocumentStore) CreateSearchRecord(ctx context.Context, record *models.SearchRecord) error {
	record.CreateTime = time.Now()
	return s.db.WithContext(ctx).Create(record).Error
}
