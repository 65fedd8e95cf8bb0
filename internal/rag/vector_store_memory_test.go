package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreQueryEmpty(t *testing.T) {
	store := NewMemoryVectorStore(2)

	matches, err := store.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryStoreQueryOrdering(t *testing.T) {
	store := NewMemoryVectorStore(2)

	err := store.Upsert(context.Background(), []IndexEntry{
		{ID: "far", Vector: []float32{0, 1}},
		{ID: "close", Vector: []float32{1, 0.1}},
		{ID: "exact", Vector: []float32{1, 0}},
	})
	require.NoError(t, err)

	matches, err := store.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "exact", matches[0].ID)
	assert.Equal(t, "close", matches[1].ID)
	assert.Equal(t, "far", matches[2].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestMemoryStoreTopKTruncation(t *testing.T) {
	store := NewMemoryVectorStore(2)

	entries := make([]IndexEntry, 10)
	for i := range entries {
		entries[i] = IndexEntry{ID: string(rune('a' + i)), Vector: []float32{1, float32(i)}}
	}
	require.NoError(t, store.Upsert(context.Background(), entries))

	matches, err := store.Query(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

// 维度不匹配是配置错误，写入和查询都必须硬报错
func TestMemoryStoreDimensionMismatch(t *testing.T) {
	store := NewMemoryVectorStore(4)

	err := store.Upsert(context.Background(), []IndexEntry{{ID: "bad", Vector: []float32{1, 2}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexConfig)

	_, err = store.Query(context.Background(), []float32{1, 2}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexConfig)
}

func TestMemoryStoreKeepsMetadata(t *testing.T) {
	store := NewMemoryVectorStore(2)

	meta := EntryMetadata{
		FileName:    "policy.pdf",
		DocID:       "doc-1",
		PageNo:      7,
		ChunkIndex:  "chunk-1",
		TextPreview: "Deductible is $500.",
	}
	require.NoError(t, store.Upsert(context.Background(), []IndexEntry{
		{ID: EntryID("doc-1", 7, "chunk-1"), Vector: []float32{1, 0}, Metadata: meta},
	}))

	matches, err := store.Query(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-1::7::chunk-1", matches[0].ID)
	assert.Equal(t, meta, matches[0].Metadata)
}
