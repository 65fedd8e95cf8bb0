package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 未配置密钥时退化为Noop，调用方可据此降级启动
func TestNewOpenAIEmbedderWithoutKey(t *testing.T) {
	embedder := NewOpenAIEmbedder("", "", "text-embedding-3-small", 0)
	assert.IsType(t, &NoopEmbedder{}, embedder)
	assert.False(t, embedder.Ready())
	assert.Equal(t, 0, embedder.Dimensions())
}

func TestNewOpenAIEmbedderDefaultDimensions(t *testing.T) {
	cases := []struct {
		model string
		dims  int
		want  int
	}{
		{"text-embedding-3-small", 0, 1536},
		{"text-embedding-3-large", 0, 3072},
		{"text-embedding-ada-002", 0, 1536},
		{"", 0, 1536},
		{"text-embedding-3-small", 768, 768},
		{"some-custom-model", 0, 1536},
	}
	for _, tc := range cases {
		embedder := NewOpenAIEmbedder("sk-test", "", tc.model, tc.dims)
		assert.Equal(t, tc.want, embedder.Dimensions(), "model=%q dims=%d", tc.model, tc.dims)
		assert.True(t, embedder.Ready())
	}
}

// Noop后端失败必须显式报错，不允许静默返回零向量
func TestNoopEmbedderReturnsError(t *testing.T) {
	embedder := &NoopEmbedder{}
	vectors, err := embedder.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Nil(t, vectors)
}

// 每条文本的确定性向量，便于断言顺序
func vectorForText(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

// newEmbeddingAPIServer 模拟Embedding接口，reversed为true时倒序返回data但保留index字段
func newEmbeddingAPIServer(t *testing.T, reversed bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i, text := range req.Input {
			data = append(data, item{Object: "embedding", Index: i, Embedding: vectorForText(text)})
		}
		if reversed {
			for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
				data[i], data[j] = data[j], data[i]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		}))
	}))
}

// 响应乱序到达时按index字段还原为输入顺序
func TestOpenAIEmbedderRestoresResponseOrder(t *testing.T) {
	server := newEmbeddingAPIServer(t, true)
	defer server.Close()

	embedder := NewOpenAIEmbedder("sk-test", server.URL+"/v1", "text-embedding-3-small", 2)
	texts := []string{"a", "bb", "ccc"}

	vectors, err := embedder.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, vectorForText(text), vectors[i], "text=%q", text)
	}
}

// 同一文本单条与批量向量化结果一致
func TestOpenAIEmbedderSingleMatchesBatch(t *testing.T) {
	server := newEmbeddingAPIServer(t, true)
	defer server.Close()

	embedder := NewOpenAIEmbedder("sk-test", server.URL+"/v1", "text-embedding-3-small", 2)

	batch, err := embedder.EmbedBatch(context.Background(), []string{"deductible", "premium"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := embedder.EmbedBatch(context.Background(), []string{"deductible"})
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, single[0], batch[0])

	single, err = embedder.EmbedBatch(context.Background(), []string{"premium"})
	require.NoError(t, err)
	assert.Equal(t, single[0], batch[1])
}
