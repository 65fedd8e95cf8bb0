package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	UseTLS     bool
	Timeout    time.Duration
}

// milvusVectorStore 基于Milvus的向量存储，每个部署一个集合，余弦度量
type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
}

// NewMilvusVectorStore 创建Milvus向量存储并确保集合就绪
// 集合维度在创建时固定，后续写入的维度不匹配按硬错误处理
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "policy_chunks"
	}
	if opts.VectorSize <= 0 {
		return nil, fmt.Errorf("%w: 向量维度未配置", ErrIndexConfig)
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	store := &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
	}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !hasCollection {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Insurance policy document chunks",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "256"},
				},
				{
					Name:       "file_name",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "512"},
				},
				{
					Name:       "doc_id",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:     "page_no",
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       "chunk_index",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:       "text_preview",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "2048"},
				},
				{
					Name:       "vector",
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": fmt.Sprintf("%d", s.vectorSize)},
				},
			},
		}

		if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 64)
		if err != nil {
			return fmt.Errorf("failed to build index params: %w", err)
		}
		if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Upsert 批量写入条目，维度不匹配直接报错，不截断不补零
func (s *milvusVectorStore) Upsert(ctx context.Context, entries []IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entries))
	fileNames := make([]string, 0, len(entries))
	docIDs := make([]string, 0, len(entries))
	pageNos := make([]int64, 0, len(entries))
	chunkIndexes := make([]string, 0, len(entries))
	previews := make([]string, 0, len(entries))
	vectors := make([][]float32, 0, len(entries))

	for _, e := range entries {
		if len(e.Vector) != s.vectorSize {
			return fmt.Errorf("%w: 条目 %s 维度 %d，索引维度 %d", ErrIndexConfig, e.ID, len(e.Vector), s.vectorSize)
		}
		ids = append(ids, e.ID)
		fileNames = append(fileNames, e.Metadata.FileName)
		docIDs = append(docIDs, e.Metadata.DocID)
		pageNos = append(pageNos, int64(e.Metadata.PageNo))
		chunkIndexes = append(chunkIndexes, e.Metadata.ChunkIndex)
		previews = append(previews, e.Metadata.TextPreview)
		vectors = append(vectors, e.Vector)
	}

	_, err := s.milvusClient.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnVarChar("file_name", fileNames),
		entity.NewColumnVarChar("doc_id", docIDs),
		entity.NewColumnInt64("page_no", pageNos),
		entity.NewColumnVarChar("chunk_index", chunkIndexes),
		entity.NewColumnVarChar("text_preview", previews),
		entity.NewColumnFloatVector("vector", s.vectorSize, vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("milvus flush failed: %w", err)
	}
	return nil
}

// Query 按余弦相似度取top-k，按得分降序返回
func (s *milvusVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	if len(vector) != s.vectorSize {
		return nil, fmt.Errorf("%w: 查询向量维度 %d，索引维度 %d", ErrIndexConfig, len(vector), s.vectorSize)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{"file_name", "doc_id", "page_no", "chunk_index", "text_preview"},
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}
	if len(searchResults) == 0 {
		return nil, nil
	}

	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return nil, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var fileNames, docIDs, chunkIndexes, previews []string
	var pageNos []int64
	for _, field := range result.Fields {
		switch field.Name() {
		case "file_name":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				fileNames = col.Data()
			}
		case "doc_id":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				docIDs = col.Data()
			}
		case "page_no":
			if col, ok := field.(*entity.ColumnInt64); ok {
				pageNos = col.Data()
			}
		case "chunk_index":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				chunkIndexes = col.Data()
			}
		case "text_preview":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				previews = col.Data()
			}
		}
	}

	matches := make([]QueryMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		match := QueryMatch{}
		if i < len(ids) {
			match.ID = ids[i]
		}
		if i < len(result.Scores) {
			match.Score = float64(result.Scores[i])
		}
		if i < len(fileNames) {
			match.Metadata.FileName = fileNames[i]
		}
		if i < len(docIDs) {
			match.Metadata.DocID = docIDs[i]
		}
		if i < len(pageNos) {
			match.Metadata.PageNo = int(pageNos[i])
		}
		if i < len(chunkIndexes) {
			match.Metadata.ChunkIndex = chunkIndexes[i]
		}
		if i < len(previews) {
			match.Metadata.TextPreview = previews[i]
		}
		matches = append(matches, match)
	}

	return matches, nil
}

func (s *milvusVectorStore) Dimensions() int {
	return s.vectorSize
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
