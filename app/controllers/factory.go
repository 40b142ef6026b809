package controllers

import (
	"go.uber.org/dig"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/services"
)

// ControllerFactory 控制器工厂，从DI容器解析服务
type ControllerFactory struct {
	container *dig.Container
}

// NewControllerFactory 创建控制器工厂
func NewControllerFactory(container *dig.Container) *ControllerFactory {
	return &ControllerFactory{container: container}
}

// CreateDocumentController 创建文档控制器
func (f *ControllerFactory) CreateDocumentController() (*DocumentController, error) {
	var ingestService *services.IngestService
	if err := f.container.Invoke(func(s *services.IngestService) {
		ingestService = s
	}); err != nil {
		return nil, err
	}
	return NewDocumentController(ingestService), nil
}

// CreateSearchController 创建检索控制器
func (f *ControllerFactory) CreateSearchController() (*SearchController, error) {
	var searchService *services.SearchService
	if err := f.container.Invoke(func(s *services.SearchService) {
		searchService = s
	}); err != nil {
		return nil, err
	}
	return NewSearchController(searchService), nil
}

// CreateChatController 创建聊天控制器
func (f *ControllerFactory) CreateChatController() (*ChatController, error) {
	var chatService *services.ChatService
	if err := f.container.Invoke(func(s *services.ChatService) {
		chatService = s
	}); err != nil {
		return nil, err
	}
	return NewChatController(chatService), nil
}

// CreateHealthController 创建健康检查控制器
func (f *ControllerFactory) CreateHealthController() (*HealthController, error) {
	var db *gorm.DB
	if err := f.container.Invoke(func(d *gorm.DB) {
		db = d
	}); err != nil {
		return nil, err
	}
	return NewHealthController(db), nil
}
