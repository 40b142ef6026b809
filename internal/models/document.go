package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// 文档处理状态
const (
	DocumentStatusPending    = "PENDING"
	DocumentStatusProcessing = "PROCESSING"
	DocumentStatusSuccess    = "SUCCESS"
	DocumentStatusFailed     = "FAILED"
)

// IsTerminalStatus 判断状态是否为终态
func IsTerminalStatus(status string) bool {
	return status == DocumentStatusSuccess || status == DocumentStatusFailed
}

// Document 用户上传的文档
type Document struct {
	DocumentID uint      `gorm:"primaryKey;column:document_id" json:"document_id"`
	UserID     uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	MediaType  string    `gorm:"column:media_type;size:100;not null" json:"media_type"`
	FilePath   string    `gorm:"column:file_path;size:500" json:"file_path"` // 对象存储归档路径（可选）
	Status     string    `gorm:"size:20;not null;default:PENDING" json:"status"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"create_time"`
	UpdateTime time.Time `gorm:"column:update_time" json:"update_time"`

	// 关系
	Chunks []DocumentChunk `gorm:"foreignKey:DocumentID"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentChunk 文档分块及其向量
type DocumentChunk struct {
	ChunkID    uint            `gorm:"primaryKey;column:chunk_id" json:"chunk_id"`
	DocumentID uint            `gorm:"column:document_id;not null;index" json:"document_id"`
	Document   Document        `gorm:"foreignKey:DocumentID" json:"-"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	ChunkIndex int             `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreateTime time.Time       `gorm:"column:create_time;not null" json:"create_time"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

// SearchRecord 语义检索历史记录
type SearchRecord struct {
	SearchID    uint      `gorm:"primaryKey;column:search_id" json:"search_id"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Query       string    `gorm:"type:text;not null" json:"query"`
	ResultCount int       `gorm:"column:result_count;default:0" json:"result_count"`
	CreateTime  time.Time `gorm:"column:create_time;not null" json:"create_time"`
}

func (SearchRecord) TableName() string {
	return "search_records"
}
