package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// topicEmbedder 按关键词计数生成向量的测试桩，同一文本必然得到同一向量
type topicEmbedder struct {
	calls int
}

func (e *topicEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{
			float32(strings.Count(text, "Alpha")),
			float32(strings.Count(text, "Beta")),
		}
	}
	return out, nil
}

func (e *topicEmbedder) Dimensions() int { return 2 }
func (e *topicEmbedder) Ready() bool     { return true }

func TestSemanticChunkerEmptyDocument(t *testing.T) {
	chunker := NewSemanticChunker(&topicEmbedder{})

	chunks, err := chunker.Chunk(context.Background(), &Document{DocID: "d1", Pages: nil})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = chunker.Chunk(context.Background(), &Document{
		DocID: "d1",
		Pages: []Page{{PageNo: 1, Text: "   \n  "}},
	})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

// 单句文档不需要向量化，整句成块
func TestSemanticChunkerSingleSentence(t *testing.T) {
	embedder := &topicEmbedder{}
	chunker := NewSemanticChunker(embedder)

	chunks, err := chunker.Chunk(context.Background(), &Document{
		DocID: "d1",
		Pages: []Page{{PageNo: 3, Text: "Alpha only sentence."}},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Alpha only sentence.", chunks[0].Text)
	assert.Equal(t, 3, chunks[0].PageNo)
	assert.Equal(t, "d1", chunks[0].DocID)
	assert.Zero(t, embedder.calls)
}

// 话题切换处的语义距离超过95分位阈值时断块，块的页码取首句所在页
func TestSemanticChunkerBreaksOnTopicShift(t *testing.T) {
	chunker := NewSemanticChunker(&topicEmbedder{})

	doc := &Document{
		DocID: "d1",
		Pages: []Page{
			{PageNo: 1, Text: "Alpha one. Alpha two."},
			{PageNo: 2, Text: "Beta one. Beta two."},
		},
	}

	chunks, err := chunker.Chunk(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Alpha one. Alpha two.", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageNo)
	assert.Equal(t, "Beta one. Beta two.", chunks[1].Text)
	assert.Equal(t, 2, chunks[1].PageNo)
	assert.NotEqual(t, chunks[0].ChunkID, chunks[1].ChunkID)
}

// 同一输入配同一向量化输出，块边界稳定
func TestSemanticChunkerDeterministicBoundaries(t *testing.T) {
	chunker := NewSemanticChunker(&topicEmbedder{})
	doc := &Document{
		DocID: "d1",
		Pages: []Page{
			{PageNo: 1, Text: "Alpha one. Alpha two."},
			{PageNo: 2, Text: "Beta one. Beta two."},
		},
	}

	first, err := chunker.Chunk(context.Background(), doc)
	require.NoError(t, err)
	second, err := chunker.Chunk(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].PageNo, second[i].PageNo)
	}
}

func TestSplitSentences(t *testing.T) {
	refs := splitSentences([]Page{
		{PageNo: 1, Text: "First. Second! Third?"},
		{PageNo: 2, Text: "第一句。第二句！"},
	})
	require.Len(t, refs, 5)
	assert.Equal(t, "First.", refs[0].text)
	assert.Equal(t, 1, refs[0].pageNo)
	assert.Equal(t, "第一句。", refs[3].text)
	assert.Equal(t, 2, refs[3].pageNo)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
}

func TestPercentileOf(t *testing.T) {
	assert.Zero(t, percentileOf(nil, 95))
	assert.Equal(t, 0.5, percentileOf([]float64{0.5}, 95))
	// 线性插值：阈值落在次大值与最大值之间，最大距离能触发断块
	values := []float64{0.1, 0.1, 0.2}
	got := percentileOf(values, 95)
	assert.Greater(t, got, 0.1)
	assert.Less(t, got, 0.2)
}
