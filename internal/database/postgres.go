package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/docuchat/backend-go/internal/config"
	"github.com/docuchat/backend-go/internal/models"
)

// InitDB 连接数据库并返回句柄，调用方负责注入到各服务
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sql.DB设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := autoMigrate(db); err != nil {
		log.Printf("⚠️  Database migration warning: %v", err)
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

// autoMigrate 自动迁移文档相关表
func autoMigrate(db *gorm.DB) error {
	// 向量列依赖pgvector扩展，必须先于建表执行
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	if err := db.AutoMigrate(&models.Document{}); err != nil {
		log.Printf("⚠️  Failed to migrate documents: %v", err)
	}

	if err := db.AutoMigrate(&models.DocumentChunk{}); err != nil {
		log.Printf("⚠️  Failed to migrate document_chunks: %v", err)
	}

	if err := db.AutoMigrate(&models.SearchRecord{}); err != nil {
		log.Printf("⚠️  Failed to migrate search_records: %v", err)
	}

	return nil
}

// CloseDB 关闭数据库连接
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
