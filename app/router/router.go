package router

import (
	"fmt"

	"github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuchat/backend-go/app/controllers"
)

// InitRoutes 注册全部路由
func InitRoutes(factory *controllers.ControllerFactory) error {
	healthController, err := factory.CreateHealthController()
	if err != nil {
		return fmt.Errorf("failed to create health controller: %w", err)
	}
	docController, err := factory.CreateDocumentController()
	if err != nil {
		return fmt.Errorf("failed to create document controller: %w", err)
	}
	searchController, err := factory.CreateSearchController()
	if err != nil {
		return fmt.Errorf("failed to create search controller: %w", err)
	}
	chatController, err := factory.CreateChatController()
	if err != nil {
		return fmt.Errorf("failed to create chat controller: %w", err)
	}

	web.Router("/health", healthController, "get:Health")
	web.Handler("/metrics", promhttp.Handler())

	// 文档管理
	web.Router("/api/documents", docController, "get:List")
	web.Router("/api/documents/upload", docController, "post:Upload")
	web.Router("/api/documents/:id/status", docController, "get:Status")

	// 语义检索
	web.Router("/api/search", searchController, "post:Search")

	// 知识库聊天
	web.Router("/api/chat", chatController, "post:Stream")

	return nil
}
