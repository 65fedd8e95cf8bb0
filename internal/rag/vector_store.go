package rag

import "context"

// 检索默认参数
const (
	DefaultTopK            = 5
	DefaultUpsertBatchSize = 100
)

// VectorStore 向量存储抽象
// 索引在部署时以固定维度和余弦度量创建，条目只写不改，
// 本核心不要求删除/更新能力。条目向量维度与索引维度不一致是硬错误，
// 实现不得截断或补零
type VectorStore interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
	Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error)
	Dimensions() int
	Ready() bool
}
