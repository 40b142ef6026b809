package controllers

import (
	"gorm.io/gorm"
)

// HealthController 健康检查
type HealthController struct {
	BaseController
	db *gorm.DB
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health 返回服务与数据库健康状态
// GET /health
func (c *HealthController) Health() {
	dbStatus := "ok"
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
		}
	} else {
		dbStatus = "down"
	}

	c.JSONSuccess(map[string]interface{}{
		"service":  "ok",
		"database": dbStatus,
	})
}
