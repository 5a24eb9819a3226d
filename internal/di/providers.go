package di

import (
	"fmt"

	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/database"
	"github.com/docqa/backend-go/internal/metrics"
	"github.com/docqa/backend-go/internal/rag"
	"github.com/docqa/backend-go/internal/registry"
	"github.com/docqa/backend-go/internal/rerank"
	"github.com/docqa/backend-go/internal/storage"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// RegisterProviders 注册所有依赖提供者
func RegisterProviders(container *dig.Container) error {
	providers := []interface{}{
		provideConfig,
		provideDatabase,
		provideRegistry,
		provideArchive,
		provideCollector,
		provideEmbedder,
		provideVectorStore,
		provideIndex,
		provideRetriever,
		provideReranker,
		provideSynthesizer,
		providePipeline,
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

func provideConfig() (*config.Config, error) {
	cfg := config.GetAppConfig()
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return cfg, nil
}

func provideDatabase(cfg *config.Config) *gorm.DB {
	// 数据库可选：未启用时登记服务退化为空实现
	if !cfg.Database.Enabled {
		return nil
	}
	return database.DB
}

func provideRegistry(db *gorm.DB) *registry.DocumentRegistry {
	return registry.NewDocumentRegistry(db)
}

func provideArchive(cfg *config.Config) (*storage.DocumentArchive, error) {
	return storage.NewDocumentArchive(cfg.Storage)
}

func provideCollector(cfg *config.Config) *metrics.Collector {
	if !cfg.Prometheus.Enabled {
		return nil
	}
	return metrics.NewCollector()
}

func provideEmbedder(cfg *config.Config) rag.Embedder {
	embedder := rag.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model)
	if cfg.Redis.Enabled && database.RedisClient != nil {
		return rag.NewCachingEmbedder(embedder, database.RedisClient, cfg.Embedding.Model, cfg.Embedding.CacheTTL)
	}
	return embedder
}

func provideVectorStore(cfg *config.Config, db *gorm.DB) (rag.VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "milvus":
		return rag.NewMilvusVectorStore(rag.MilvusOptions{
			Address:    cfg.VectorStore.Milvus.Address,
			Username:   cfg.VectorStore.Milvus.Username,
			Password:   cfg.VectorStore.Milvus.Password,
			Collection: cfg.VectorStore.Milvus.Collection,
			Database:   cfg.VectorStore.Milvus.Database,
			UseTLS:     cfg.VectorStore.Milvus.TLS,
			VectorSize: cfg.VectorStore.Milvus.VectorSize,
			Distance:   cfg.VectorStore.Milvus.Distance,
		})
	case "database":
		return rag.NewDatabaseVectorStore(db)
	default:
		return rag.NewMemoryVectorStore(), nil
	}
}

func provideIndex(embedder rag.Embedder, store rag.VectorStore) *rag.Index {
	return rag.NewIndex(embedder, store)
}

func provideRetriever(cfg *config.Config, index *rag.Index) *rag.Retriever {
	return rag.NewRetriever(index, cfg.RAG.RetrievalBreadth)
}

func provideReranker(cfg *config.Config) *rag.Reranker {
	if !cfg.Rerank.Enabled {
		return rag.NewReranker(rag.PassthroughScorer{})
	}
	client := rerank.NewClient(cfg.Rerank.APIKey, cfg.Rerank.BaseURL, cfg.Rerank.Model, cfg.Rerank.Timeout)
	return rag.NewReranker(rag.NewCrossEncoderScorer(client))
}

func provideSynthesizer(cfg *config.Config) *rag.Synthesizer {
	chat := rag.NewOpenAIChatClient(
		cfg.Chat.APIKey,
		cfg.Chat.BaseURL,
		cfg.Chat.Model,
		cfg.Chat.Temperature,
		cfg.Chat.MaxTokens,
	)
	return rag.NewSynthesizer(chat)
}

func providePipeline(
	cfg *config.Config,
	index *rag.Index,
	retriever *rag.Retriever,
	reranker *rag.Reranker,
	synthesizer *rag.Synthesizer,
	collector *metrics.Collector,
) *rag.Pipeline {
	chunker := rag.NewChunker(
		cfg.RAG.ChunkSize,
		cfg.RAG.ChunkOverlap,
		rag.LengthFuncByName(cfg.RAG.LengthFunction),
	)
	return rag.NewPipeline(
		rag.NewPDFLoader(),
		chunker,
		index,
		retriever,
		reranker,
		synthesizer,
		cfg.RAG,
		collector,
	)
}
