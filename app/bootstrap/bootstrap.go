package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/insurhub/backend-go/internal/cache"
	"github.com/insurhub/backend-go/internal/config"
	"github.com/insurhub/backend-go/internal/di"
	"github.com/insurhub/backend-go/internal/gemini"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/insurhub/backend-go/internal/rag"
	"github.com/insurhub/backend-go/internal/services"
	"github.com/insurhub/backend-go/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	cleanupTasks []func() error
}

// Global app instance for controllers to access
var globalApp *App

// GetApp returns the global app instance
func GetApp() *App {
	return globalApp
}

// Init bootstraps configuration, logger and the question answering pipeline
// required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load dynamic configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	app := &App{}

	embedder, generator := buildAIBackends()

	store, err := buildVectorStore()
	if err != nil {
		return nil, err
	}

	if err := checkDimensions(embedder, store); err != nil {
		return nil, err
	}

	answerCache := cache.NewAnswerCache(config.AppConfig.Cache)
	app.cleanupTasks = append(app.cleanupTasks, answerCache.Close)

	archive, err := storage.NewArchiveStore(config.AppConfig.Storage)
	if err != nil {
		logger.Warn("归档存储初始化失败，原件只保留本地暂存", zap.Error(err))
		archive = nil
	}

	extractor := rag.NewExtractor()
	validator := rag.NewDocumentValidator()
	chunker := rag.NewSemanticChunker(embedder)
	indexer := rag.NewDocumentIndexer(extractor, chunker, embedder, store,
		config.AppConfig.Retrieval.UpsertBatchSize, logger.GetLogger())
	retriever := rag.NewRetriever(embedder, store, config.AppConfig.Retrieval.TopK)
	engine := rag.NewQAEngine(retriever, generator, logger.GetLogger())
	metrics := services.NewMetricsService()

	// 具名nil指针塞进接口后不再等于nil，未配置归档时必须保持接口为空
	var documentArchive services.DocumentArchive
	if archive != nil {
		documentArchive = archive
	}

	policyService := services.NewPolicyService(
		extractor, validator, indexer, engine, answerCache, documentArchive, metrics)

	// 注册到DI容器，控制器在Prepare中取用
	di.InitContainer()
	if err := di.Provide(func() *services.PolicyService { return policyService }); err != nil {
		return nil, err
	}
	if err := di.Provide(func() *services.MetricsService { return metrics }); err != nil {
		return nil, err
	}
	if err := di.Provide(func() *storage.ArchiveStore { return archive }); err != nil {
		return nil, err
	}

	globalApp = app
	logger.Info("问答管线装配完成",
		zap.String("ai_provider", config.AppConfig.AI.Provider),
		zap.String("vector_store", config.AppConfig.Retrieval.Provider),
		zap.Int("vector_dim", store.Dimensions()),
		zap.Int("top_k", config.AppConfig.Retrieval.TopK))
	return app, nil
}

// buildAIBackends 按配置构建Embedding与生成后端
// 密钥缺失时降级为Noop实现，服务可启动但相关请求会报错
func buildAIBackends() (rag.Embedder, rag.Generator) {
	cfg := config.AppConfig.AI

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OpenAI API key not configured, AI services will not be available")
			return &rag.NoopEmbedder{}, &rag.NoopGenerator{}
		}
		embedder := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, config.AppConfig.Retrieval.VectorDim)
		generator := rag.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.GenerationModel)
		return embedder, generator
	default:
		service := gemini.NewService(cfg.GeminiAPIKey)
		if service == nil {
			logger.Warn("Gemini API key not configured, AI services will not be available")
			return &rag.NoopEmbedder{}, &rag.NoopGenerator{}
		}
		embedder := gemini.NewEmbedder(service, cfg.EmbeddingModel, config.AppConfig.Retrieval.VectorDim)
		generator := gemini.NewGenerator(service, cfg.GenerationModel)
		return embedder, generator
	}
}

// checkDimensions 启动期维度握手
// Embedding输出维度与索引维度不一致是配置错误，禁止带病启动；
// 未配置密钥的Noop后端维度为0，不参与握手（服务降级启动）
func checkDimensions(embedder rag.Embedder, store rag.VectorStore) error {
	if !embedder.Ready() {
		return nil
	}
	if embedder.Dimensions() != store.Dimensions() {
		return fmt.Errorf("%w: embedder produces %d dimensions but index expects %d",
			rag.ErrIndexConfig, embedder.Dimensions(), store.Dimensions())
	}
	return nil
}

// buildVectorStore 按配置构建向量索引
// Milvus连接失败时回退到内存索引，保证本地开发可用
func buildVectorStore() (rag.VectorStore, error) {
	cfg := config.AppConfig.Retrieval

	if cfg.Provider == "memory" {
		logger.Info("使用内存向量索引", zap.Int("vector_dim", cfg.VectorDim))
		return rag.NewMemoryVectorStore(cfg.VectorDim), nil
	}

	store, err := rag.NewMilvusVectorStore(rag.MilvusOptions{
		Address:    cfg.Milvus.Address,
		Username:   cfg.Milvus.Username,
		Password:   cfg.Milvus.Password,
		Collection: cfg.Milvus.Collection,
		Database:   cfg.Milvus.Database,
		VectorSize: cfg.VectorDim,
		UseTLS:     cfg.Milvus.TLS,
	})
	if err != nil {
		// 维度等配置错误必须暴露，连接类错误才允许回退
		if errors.Is(err, rag.ErrIndexConfig) {
			return nil, err
		}
		logger.Warn("Milvus初始化失败，回退到内存向量索引", zap.Error(err))
		return rag.NewMemoryVectorStore(cfg.VectorDim), nil
	}

	logger.Info("Milvus向量索引初始化完成",
		zap.String("address", cfg.Milvus.Address),
		zap.String("collection", cfg.Milvus.Collection))
	return store, nil
}

// Shutdown flushes/logs and closes resources gracefully.
func (a *App) Shutdown() {
	// Execute cleanup tasks in reverse order (best effort).
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("Cleanup error: %v\n", err)
		}
	}

	logger.Sync()
}
