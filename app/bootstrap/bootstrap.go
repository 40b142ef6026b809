package bootstrap

import (
	"log"

	"github.com/beego/beego/v2/server/web"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/app/controllers"
	"github.com/docuchat/backend-go/app/middleware"
	"github.com/docuchat/backend-go/app/router"
	"github.com/docuchat/backend-go/internal/auth"
	"github.com/docuchat/backend-go/internal/config"
	"github.com/docuchat/backend-go/internal/database"
	"github.com/docuchat/backend-go/internal/di"
	"github.com/docuchat/backend-go/internal/kafka"
	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/services"
)

// App 持有需要在关闭时清理的资源
type App struct {
	Config    *config.Config
	Container *dig.Container

	db       *gorm.DB
	rdb      *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
}

// Init bootstraps configuration, logger, database connections and other shared
// infrastructure components required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	config.WatchFile("conf/app.yaml")

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := database.InitRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, status cache disabled", zap.Error(err))
		rdb = nil
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
	}

	container, err := di.BuildContainer(cfg, db, rdb, producer)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Container: container,
		db:        db,
		rdb:       rdb,
		producer:  producer,
	}

	// 异步模式下启动处理worker
	if cfg.Kafka.Enabled {
		var ingestService *services.IngestService
		if err := container.Invoke(func(s *services.IngestService) { ingestService = s }); err != nil {
			return nil, err
		}
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic,
			ingestService.HandleProcessEvent)
		if err != nil {
			return nil, err
		}
		consumer.Start()
		app.consumer = consumer
	}

	// 全局过滤器与路由
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, 0)
	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)
	web.InsertFilter("/api/*", web.BeforeRouter, middleware.NewAuthFilter(jwtService))

	factory := controllers.NewControllerFactory(container)
	if err := router.InitRoutes(factory); err != nil {
		return nil, err
	}

	return app, nil
}

// Shutdown 按依赖顺序释放资源
func (a *App) Shutdown() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			logger.Error("failed to close kafka consumer", zap.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", zap.Error(err))
		}
	}
	if err := database.CloseRedis(a.rdb); err != nil {
		logger.Error("failed to close redis", zap.Error(err))
	}
	if err := database.CloseDB(a.db); err != nil {
		logger.Error("failed to close database", zap.Error(err))
	}
	logger.Sync()
}
