package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Retrieval  RetrievalConfig
	FileUpload FileUploadConfig
	Storage    ObjectStorageConfig
	Cache      CacheConfig
	Prometheus PrometheusConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// AIConfig 向量化与生成后端配置
// provider为gemini或openai，两者走同一套Embedder/Generator接口
type AIConfig struct {
	Provider        string `validate:"oneof=gemini openai"`
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	EmbeddingModel  string
	GenerationModel string
}

// RetrievalConfig 向量检索配置
// 维度在索引创建时固定，与Embedding输出不一致属于启动期致命错误
type RetrievalConfig struct {
	VectorDim       int    `validate:"gt=0"`
	TopK            int    `validate:"gt=0"`
	UpsertBatchSize int    `validate:"gt=0"`
	Provider        string `validate:"oneof=milvus memory"`
	Milvus          MilvusConfig
}

type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	TLS        bool
}

type FileUploadConfig struct {
	MaxSize      int64
	AllowedTypes []string
	UploadPath   string
}

type ObjectStorageConfig struct {
	Provider  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CacheConfig struct {
	Enabled    bool
	RedisAddr  string
	RedisDB    int
	TTLSeconds int
}

type PrometheusConfig struct {
	Enabled bool
}

var AppConfig *Config

// LoadConfig 加载配置：默认值 → 环境变量覆盖 → 结构校验
func LoadConfig() error {
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")

	// AI后端默认值（Gemini 768维，与原索引保持一致）
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.embedding_model", "text-embedding-004")
	viper.SetDefault("ai.generation_model", "gemini-2.0-flash")
	viper.SetDefault("ai.openai_base_url", "")

	// 检索默认值
	viper.SetDefault("retrieval.vector_dim", 768)
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.upsert_batch_size", 100)
	viper.SetDefault("retrieval.provider", "milvus")
	viper.SetDefault("retrieval.milvus.address", "localhost:19530")
	viper.SetDefault("retrieval.milvus.collection", "health_insurance_rag")
	viper.SetDefault("retrieval.milvus.database", "default")
	viper.SetDefault("retrieval.milvus.tls", false)

	// 上传默认值
	viper.SetDefault("file_upload.max_size", 15728640) // 15MB
	viper.SetDefault("file_upload.allowed_types", []string{".pdf", ".docx", ".txt", ".md"})
	viper.SetDefault("file_upload.upload_path", "./uploaded_docs")

	// 对象存储默认值（local表示只留本地暂存）
	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.bucket", "policy-documents")
	viper.SetDefault("storage.use_ssl", false)

	// 应答缓存默认值
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.redis_db", 0)
	viper.SetDefault("cache.ttl_seconds", 600)

	viper.SetDefault("prometheus.enabled", true)

	viper.SetEnvPrefix("INSURHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 常用环境变量直读
	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		viper.Set("ai.gemini_api_key", key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("ai.openai_api_key", key)
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		viper.Set("ai.provider", strings.ToLower(provider))
	}
	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		viper.Set("retrieval.milvus.address", addr)
	}
	if collection := os.Getenv("MILVUS_COLLECTION"); collection != "" {
		viper.Set("retrieval.milvus.collection", collection)
	}
	if provider := os.Getenv("VECTOR_STORE_PROVIDER"); provider != "" {
		viper.Set("retrieval.provider", strings.ToLower(provider))
	}
	if uploadPath := os.Getenv("UPLOAD_DIR"); uploadPath != "" {
		viper.Set("file_upload.upload_path", uploadPath)
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		viper.Set("storage.endpoint", endpoint)
		viper.Set("storage.provider", "minio")
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		viper.Set("storage.access_key", accessKey)
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		viper.Set("storage.secret_key", secretKey)
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		viper.Set("storage.bucket", bucket)
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		viper.Set("cache.redis_addr", redisAddr)
		viper.Set("cache.enabled", true)
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		AI: AIConfig{
			Provider:        viper.GetString("ai.provider"),
			GeminiAPIKey:    viper.GetString("ai.gemini_api_key"),
			OpenAIAPIKey:    viper.GetString("ai.openai_api_key"),
			OpenAIBaseURL:   viper.GetString("ai.openai_base_url"),
			EmbeddingModel:  viper.GetString("ai.embedding_model"),
			GenerationModel: viper.GetString("ai.generation_model"),
		},
		Retrieval: RetrievalConfig{
			VectorDim:       viper.GetInt("retrieval.vector_dim"),
			TopK:            viper.GetInt("retrieval.top_k"),
			UpsertBatchSize: viper.GetInt("retrieval.upsert_batch_size"),
			Provider:        viper.GetString("retrieval.provider"),
			Milvus: MilvusConfig{
				Address:    viper.GetString("retrieval.milvus.address"),
				Username:   viper.GetString("retrieval.milvus.username"),
				Password:   viper.GetString("retrieval.milvus.password"),
				Collection: viper.GetString("retrieval.milvus.collection"),
				Database:   viper.GetString("retrieval.milvus.database"),
				TLS:        viper.GetBool("retrieval.milvus.tls"),
			},
		},
		FileUpload: FileUploadConfig{
			MaxSize:      viper.GetInt64("file_upload.max_size"),
			AllowedTypes: viper.GetStringSlice("file_upload.allowed_types"),
			UploadPath:   viper.GetString("file_upload.upload_path"),
		},
		Storage: ObjectStorageConfig{
			Provider:  viper.GetString("storage.provider"),
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.access_key"),
			SecretKey: viper.GetString("storage.secret_key"),
			Bucket:    viper.GetString("storage.bucket"),
			UseSSL:    viper.GetBool("storage.use_ssl"),
		},
		Cache: CacheConfig{
			Enabled:    viper.GetBool("cache.enabled"),
			RedisAddr:  viper.GetString("cache.redis_addr"),
			RedisDB:    viper.GetInt("cache.redis_db"),
			TTLSeconds: viper.GetInt("cache.ttl_seconds"),
		},
		Prometheus: PrometheusConfig{
			Enabled: viper.GetBool("prometheus.enabled"),
		},
	}

	if err := validateConfig(AppConfig); err != nil {
		return err
	}
	return nil
}

// validateConfig 结构级配置校验，错误在启动期暴露
func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
