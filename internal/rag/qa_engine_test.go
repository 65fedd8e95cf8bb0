package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore 返回固定命中序列的测试桩
type scriptedStore struct {
	matches []QueryMatch
}

func (s *scriptedStore) Upsert(ctx context.Context, entries []IndexEntry) error { return nil }

func (s *scriptedStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	return s.matches, nil
}

func (s *scriptedStore) Dimensions() int { return 2 }
func (s *scriptedStore) Ready() bool     { return true }

// scriptedGenerator 按调用顺序返回预置应答，并记录收到的提示词
type scriptedGenerator struct {
	responses []string
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	idx := len(g.prompts) - 1
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	return g.responses[idx], nil
}

func (g *scriptedGenerator) Ready() bool { return true }

func newTestEngine(matches []QueryMatch, gen Generator) *QAEngine {
	retriever := NewRetriever(&topicEmbedder{}, &scriptedStore{matches: matches}, 5)
	return NewQAEngine(retriever, gen, nil)
}

// 检索为空时短路返回固定应答，不得触碰生成器
func TestAskEmptyRetrieval(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"should not be called"}}
	engine := newTestEngine(nil, gen)

	answer, err := engine.Ask(context.Background(), "What is covered?")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantAnswer, answer.Answer)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0.0, answer.Confidence)
	assert.Empty(t, gen.prompts)
}

func TestAskTwoPassGeneration(t *testing.T) {
	matches := []QueryMatch{
		{ID: "m1", Score: 0.9, Metadata: EntryMetadata{FileName: "policy.pdf", PageNo: 3, ChunkIndex: "c1", TextPreview: "Deductible is $500."}},
		{ID: "m2", Score: 0.8, Metadata: EntryMetadata{FileName: "policy.pdf", PageNo: 5, ChunkIndex: "c2", TextPreview: "Copay is $20 per visit."}},
		{ID: "m3", Score: 0.7, Metadata: EntryMetadata{FileName: "rider.pdf", PageNo: 1, ChunkIndex: "c3", TextPreview: "Dental is excluded."}},
	}
	gen := &scriptedGenerator{responses: []string{"draft answer", "refined answer"}}
	engine := newTestEngine(matches, gen)

	answer, err := engine.Ask(context.Background(), "What is my deductible?")
	require.NoError(t, err)

	// 最终应答取润色结果
	assert.Equal(t, "refined answer", answer.Answer)

	// 草稿与润色各一次，润色提示词携带草稿与同一份上下文
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Deductible is $500.")
	assert.Contains(t, gen.prompts[1], "draft answer")
	assert.Contains(t, gen.prompts[1], "Deductible is $500.")

	// 置信度 = 命中得分均值，保留3位小数
	assert.Equal(t, 0.8, answer.Confidence)

	// 引用与检索顺序一致
	require.Len(t, answer.Sources, 3)
	assert.Equal(t, "policy.pdf", answer.Sources[0].FileName)
	assert.Equal(t, 3, answer.Sources[0].PageNo)
	assert.Equal(t, 0.9, answer.Sources[0].Score)
	assert.Equal(t, "rider.pdf", answer.Sources[2].FileName)
}

func TestAssembleContextAnnotation(t *testing.T) {
	contextText, citations := assembleContext([]QueryMatch{
		{Score: 0.9, Metadata: EntryMetadata{FileName: "policy.pdf", PageNo: 3, TextPreview: "Deductible is $500."}},
	})

	assert.Contains(t, contextText, "--- Source: policy.pdf | Page 3 ---")
	assert.Contains(t, contextText, "Deductible is $500.")
	require.Len(t, citations, 1)
	assert.Equal(t, 0.9, citations[0].Score)
}

func TestMeanScoreRounding(t *testing.T) {
	matches := []QueryMatch{{Score: 0.9}, {Score: 0.8}, {Score: 0.7}}
	assert.Equal(t, 0.8, meanScore(matches))

	matches = []QueryMatch{{Score: 0.3333333}, {Score: 0.6666666}}
	assert.Equal(t, 0.5, meanScore(matches))

	assert.Equal(t, 0.0, meanScore(nil))

	matches = []QueryMatch{{Score: 0.12345}}
	assert.Equal(t, 0.123, meanScore(matches))
}

// 端到端：入库真实文本后针对其内容提问
func TestPipelineEndToEnd(t *testing.T) {
	embedder := &keywordEmbedder{}
	store := NewMemoryVectorStore(3)

	path := writeTempDoc(t, "policy.txt",
		"The annual deductible is $500 per member. "+
			"The monthly premium is $320. "+
			"Emergency services are covered at all network hospitals.")

	indexer := NewDocumentIndexer(NewExtractor(), NewSemanticChunker(embedder), embedder, store, 0, nil)
	report, err := indexer.IndexDocument(context.Background(), "", path)
	require.NoError(t, err)
	assert.Greater(t, report.TotalChunks, 0)

	gen := &scriptedGenerator{responses: []string{"draft", "The deductible is $500 per member."}}
	retriever := NewRetriever(embedder, store, 5)
	engine := NewQAEngine(retriever, gen, nil)

	answer, err := engine.Ask(context.Background(), "What is the deductible?")
	require.NoError(t, err)
	assert.Equal(t, "The deductible is $500 per member.", answer.Answer)
	assert.NotEmpty(t, answer.Sources)
	assert.Greater(t, answer.Confidence, 0.0)

	// 最佳引用应来自含deductible的分块
	assert.Contains(t, strings.ToLower(answer.Sources[0].TextPreview), "deductible")
}

// keywordEmbedder 按保险术语计数生成3维向量的测试桩
type keywordEmbedder struct{}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lowered := strings.ToLower(text)
		out[i] = []float32{
			float32(strings.Count(lowered, "deductible")),
			float32(strings.Count(lowered, "premium")),
			float32(strings.Count(lowered, "emergency")),
		}
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int { return 3 }
func (e *keywordEmbedder) Ready() bool     { return true }
