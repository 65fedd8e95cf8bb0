package rag

import (
	"context"
	"fmt"
)

// Retriever 检索器：问题向量化后查向量库取top-k
type Retriever struct {
	embedder Embedder
	store    VectorStore
	topK     int
}

// NewRetriever 创建检索器，topK在部署期固定
func NewRetriever(embedder Embedder, store VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve 返回按相似度降序的候选段落
// 索引为空或没有结果过后端相关性门槛时返回空序列，这是合法结果不是错误
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]QueryMatch, error) {
	embeddings, err := r.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: 问题向量化返回 %d 条", ErrEmbedding, len(embeddings))
	}

	return r.store.Query(ctx, embeddings[0], r.topK)
}
