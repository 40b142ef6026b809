package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"gorm.io/gorm"

	"github.com/docuchat/backend-go/internal/config"
	"github.com/docuchat/backend-go/internal/kafka"
	"github.com/docuchat/backend-go/internal/knowledge"
	"github.com/docuchat/backend-go/internal/services"
	"github.com/docuchat/backend-go/internal/storage"
)

// BuildContainer 组装依赖注入容器。
// 数据库和Redis句柄由bootstrap创建后注入，不走包级全局变量。
func BuildContainer(cfg *config.Config, db *gorm.DB, rdb *redis.Client, producer *kafka.Producer) (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		func() *gorm.DB { return db },
		func() *redis.Client { return rdb },
		func() *kafka.Producer { return producer },

		func(db *gorm.DB) *services.DocumentStore {
			return services.NewDocumentStore(db)
		},
		func(db *gorm.DB) *services.DocumentStateMachine {
			return services.NewDocumentStateMachine(db)
		},
		func(rdb *redis.Client) *services.StatusCache {
			return services.NewStatusCache(rdb)
		},
		func() *knowledge.ExtractorManager {
			return knowledge.NewExtractorManager()
		},
		func(cfg *config.Config) (*knowledge.Chunker, error) {
			return knowledge.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
		},
		func(cfg *config.Config) knowledge.Embedder {
			return knowledge.NewOpenAIEmbedder(cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel)
		},
		func(cfg *config.Config, db *gorm.DB) (knowledge.VectorStore, error) {
			switch cfg.Knowledge.VectorStore.Provider {
			case "milvus":
				m := cfg.Knowledge.VectorStore.Milvus
				return knowledge.NewMilvusVectorStore(db, knowledge.MilvusOptions{
					Address:    m.Address,
					Username:   m.Username,
					Password:   m.Password,
					Collection: m.Collection,
					Database:   m.Database,
					UseTLS:     m.TLS,
					VectorSize: m.VectorSize,
				})
			case "pgvector", "":
				return knowledge.NewPgVectorStore(db), nil
			default:
				return nil, fmt.Errorf("unknown vector store provider: %s", cfg.Knowledge.VectorStore.Provider)
			}
		},
		func(cfg *config.Config) (storage.Archive, error) {
			return storage.NewMinIOArchive(cfg.Storage)
		},
		func(
			cfg *config.Config,
			store *services.DocumentStore,
			stateMachine *services.DocumentStateMachine,
			extractor *knowledge.ExtractorManager,
			chunker *knowledge.Chunker,
			embedder knowledge.Embedder,
			vectors knowledge.VectorStore,
			statusCache *services.StatusCache,
			archive storage.Archive,
			producer *kafka.Producer,
		) *services.IngestService {
			return services.NewIngestService(cfg, store, stateMachine, extractor, chunker,
				embedder, vectors, statusCache, archive, producer)
		},
		func(cfg *config.Config, store *services.DocumentStore, embedder knowledge.Embedder, vectors knowledge.VectorStore) *services.SearchService {
			return services.NewSearchService(store, embedder, vectors, cfg.Knowledge.TopK)
		},
		func(cfg *config.Config, search *services.SearchService) *services.ChatService {
			return services.NewChatService(cfg.AI.OpenAIAPIKey, cfg.AI.ChatModel, search)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}

	return container, nil
}
