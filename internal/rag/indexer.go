package rag

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentIndexer 文档入库管线：提取 → 语义分块 → 向量化 → 分批写入向量库
// 同一文档内的批次按分块产生顺序写入，末尾不满一批也必须落盘，
// 丢掉尾批意味着静默丢块，是正确性问题而不只是性能问题
type DocumentIndexer struct {
	extractor *Extractor
	chunker   *SemanticChunker
	embedder  Embedder
	store     VectorStore
	batchSize int
	logger    *zap.Logger
}

// NewDocumentIndexer 创建文档入库管线
// batchSize不大于0时使用DefaultUpsertBatchSize
func NewDocumentIndexer(extractor *Extractor, chunker *SemanticChunker, embedder Embedder, store VectorStore, batchSize int, logger *zap.Logger) *DocumentIndexer {
	if batchSize <= 0 {
		batchSize = DefaultUpsertBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentIndexer{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IndexDocument 将一个已通过校验的文件入库
// docID由调用方提供以便与归档等外部副本关联，传空时自动生成；
// 重复上传不去重，旧条目会一直留在索引里
func (ix *DocumentIndexer) IndexDocument(ctx context.Context, docID, filePath string) (*IndexReport, error) {
	fileName := filepath.Base(filePath)
	if docID == "" {
		docID = uuid.NewString()
	}

	pages, err := ix.extractor.Extract(ctx, filePath)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		DocID:    docID,
		FileName: fileName,
		Pages:    pages,
	}

	chunks, err := ix.chunker.Chunk(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &IndexReport{DocID: doc.DocID, FileName: fileName}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: 分块向量条数不匹配 got=%d want=%d", ErrEmbedding, len(embeddings), len(chunks))
	}

	batch := make([]IndexEntry, 0, ix.batchSize)
	for i, c := range chunks {
		batch = append(batch, IndexEntry{
			ID:     EntryID(c.DocID, c.PageNo, c.ChunkID),
			Vector: embeddings[i],
			Metadata: EntryMetadata{
				FileName:    fileName,
				DocID:       c.DocID,
				PageNo:      c.PageNo,
				ChunkIndex:  c.ChunkID,
				TextPreview: c.Preview(),
			},
		})

		if len(batch) >= ix.batchSize {
			if err := ix.store.Upsert(ctx, batch); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	// 尾批必须落盘
	if len(batch) > 0 {
		if err := ix.store.Upsert(ctx, batch); err != nil {
			return nil, err
		}
	}

	ix.logger.Info("document indexed",
		zap.String("doc_id", doc.DocID),
		zap.String("file_name", fileName),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)))

	return &IndexReport{
		DocID:       doc.DocID,
		FileName:    fileName,
		TotalChunks: len(chunks),
	}, nil
}
