package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurhub/backend-go/internal/rag"
)

type fixedEmbedder struct {
	rag.NoopEmbedder
	dims  int
	ready bool
}

func (f *fixedEmbedder) Dimensions() int { return f.dims }
func (f *fixedEmbedder) Ready() bool     { return f.ready }

// 维度不匹配属于配置错误，启动阶段直接拒绝
func TestCheckDimensionsMismatch(t *testing.T) {
	store := rag.NewMemoryVectorStore(768)
	err := checkDimensions(&fixedEmbedder{dims: 1536, ready: true}, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, rag.ErrIndexConfig)
}

func TestCheckDimensionsMatch(t *testing.T) {
	store := rag.NewMemoryVectorStore(768)
	assert.NoError(t, checkDimensions(&fixedEmbedder{dims: 768, ready: true}, store))
}

// 未配置后端时跳过握手，允许服务降级启动
func TestCheckDimensionsSkipsUnreadyEmbedder(t *testing.T) {
	store := rag.NewMemoryVectorStore(768)
	assert.NoError(t, checkDimensions(&fixedEmbedder{dims: 0, ready: false}, store))
}
