package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/models"
)

// DocumentStateMachine 文档状态机
type DocumentStateMachine struct {
	db *gorm.DB
}

// NewDocumentStateMachine 创建文档状态机实例
func NewDocumentStateMachine(db *gorm.DB) *DocumentStateMachine {
	return &DocumentStateMachine{db: db}
}

// 状态转换规则：终态不再转出，失败文档可重新排队
var documentTransitions = map[string][]string{
	models.DocumentStatusPending: {
		models.DocumentStatusProcessing,
		// 排队失败时文档直接判负
		models.DocumentStatusFailed,
	},
	models.DocumentStatusProcessing: {
		models.DocumentStatusSuccess,
		models.DocumentStatusFailed,
	},
	models.DocumentStatusFailed: {
		models.DocumentStatusPending,
	},
}

// CanTransition 检查是否可以进行状态转换
func (sm *DocumentStateMachine) CanTransition(from, to string) bool {
	for _, allowed := range documentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition 执行状态转换
func (sm *DocumentStateMachine) Transition(ctx context.Context, documentID uint, toStatus string) error {
	var doc models.Document
	if err := sm.db.WithContext(ctx).First(&doc, documentID).Error; err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if !sm.CanTransition(doc.Status, toStatus) {
		return fmt.Errorf("invalid transition from %s to %s", doc.Status, toStatus)
	}

	// WHERE带上旧状态，并发转换只有一个会生效
	result := sm.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("document_id = ? AND status = ?", documentID, doc.Status).
		Updates(map[string]interface{}{
			"status":      toStatus,
			"update_time": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %d status changed concurrently", documentID)
	}

	logger.Info("document status transition",
		zap.Uint("documentID", documentID),
		zap.String("from", doc.Status),
		zap.String("to", toStatus))

	return nil
}
