package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memoryVectorStore 进程内向量存储，开发与测试用的兜底实现
// 语义与Milvus实现一致：条目只写不改，维度不匹配报错，余弦相似度降序返回
type memoryVectorStore struct {
	mu         sync.RWMutex
	entries    []IndexEntry
	vectorSize int
}

// NewMemoryVectorStore 创建进程内向量存储
func NewMemoryVectorStore(vectorSize int) VectorStore {
	return &memoryVectorStore{vectorSize: vectorSize}
}

func (s *memoryVectorStore) Upsert(ctx context.Context, entries []IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != s.vectorSize {
			return fmt.Errorf("%w: 条目 %s 维度 %d，索引维度 %d", ErrIndexConfig, e.ID, len(e.Vector), s.vectorSize)
		}
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *memoryVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(vector) != s.vectorSize {
		return nil, fmt.Errorf("%w: 查询向量维度 %d，索引维度 %d", ErrIndexConfig, len(vector), s.vectorSize)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]QueryMatch, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, QueryMatch{
			ID:       e.ID,
			Score:    CosineSimilarity(vector, e.Vector),
			Metadata: e.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *memoryVectorStore) Dimensions() int {
	return s.vectorSize
}

func (s *memoryVectorStore) Ready() bool {
	return true
}
