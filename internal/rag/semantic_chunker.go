package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// 语义分块默认参数
const (
	defaultBufferSize           = 1
	defaultBreakpointPercentile = 95.0
)

// SemanticChunker 语义分块器
// 将文档拆成句子，对每个句子连同前后bufferSize个句子的滑动缓冲做向量化，
// 相邻缓冲的余弦距离超过文档内距离分布的高分位（默认95分位）即视为话题切换，
// 在该处断块。给定相同输入和相同向量化输出时结果是确定的
type SemanticChunker struct {
	embedder   Embedder
	bufferSize int
	percentile float64
}

// sentenceRef 句子及其来源页
type sentenceRef struct {
	text   string
	pageNo int
}

// NewSemanticChunker 创建语义分块器
func NewSemanticChunker(embedder Embedder) *SemanticChunker {
	return &SemanticChunker{
		embedder:   embedder,
		bufferSize: defaultBufferSize,
		percentile: defaultBreakpointPercentile,
	}
}

// Chunk 对单个文档做语义分块
// 跨页的块取首句所在页作为页码（近似，不承诺页范围）
func (c *SemanticChunker) Chunk(ctx context.Context, doc *Document) ([]Chunk, error) {
	sentences := splitSentences(doc.Pages)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		return []Chunk{c.newChunk(doc, sentences)}, nil
	}

	// 滑动缓冲：每个位置取前后各bufferSize个句子拼接后向量化
	buffers := make([]string, len(sentences))
	for i := range sentences {
		lo := i - c.bufferSize
		if lo < 0 {
			lo = 0
		}
		hi := i + c.bufferSize + 1
		if hi > len(sentences) {
			hi = len(sentences)
		}
		parts := make([]string, 0, hi-lo)
		for _, s := range sentences[lo:hi] {
			parts = append(parts, s.text)
		}
		buffers[i] = strings.Join(parts, " ")
	}

	embeddings, err := c.embedder.EmbedBatch(ctx, buffers)
	if err != nil {
		return nil, fmt.Errorf("语义分块向量化失败: %w", err)
	}
	if len(embeddings) != len(buffers) {
		return nil, fmt.Errorf("%w: 缓冲向量条数不匹配", ErrEmbedding)
	}

	// 相邻缓冲的语义距离
	distances := make([]float64, len(sentences)-1)
	for i := 0; i < len(sentences)-1; i++ {
		distances[i] = 1 - CosineSimilarity(embeddings[i], embeddings[i+1])
	}

	threshold := percentileOf(distances, c.percentile)

	var chunks []Chunk
	start := 0
	for i, d := range distances {
		if d > threshold {
			chunks = append(chunks, c.newChunk(doc, sentences[start:i+1]))
			start = i + 1
		}
	}
	if start < len(sentences) {
		chunks = append(chunks, c.newChunk(doc, sentences[start:]))
	}

	return chunks, nil
}

func (c *SemanticChunker) newChunk(doc *Document, sentences []sentenceRef) Chunk {
	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		parts = append(parts, s.text)
	}
	return Chunk{
		ChunkID: uuid.NewString(),
		DocID:   doc.DocID,
		PageNo:  sentences[0].pageNo,
		Text:    strings.Join(parts, " "),
	}
}

// splitSentences 按句末标点切句，空白句丢弃，页码跟随来源页
func splitSentences(pages []Page) []sentenceRef {
	var refs []sentenceRef
	for _, page := range pages {
		var builder strings.Builder
		flush := func() {
			s := strings.TrimSpace(builder.String())
			if s != "" {
				refs = append(refs, sentenceRef{text: s, pageNo: page.PageNo})
			}
			builder.Reset()
		}
		for _, r := range page.Text {
			builder.WriteRune(r)
			switch r {
			case '.', '!', '?', '\n', '。', '！', '？':
				flush()
			}
		}
		flush()
	}
	return refs
}

// percentileOf 线性插值法求分位数，输入会被复制后排序
func percentileOf(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CosineSimilarity 余弦相似度，零向量返回0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
