package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkerSplitEmpty(t *testing.T) {
	c := NewChunker(800, 100)
	assert.Nil(t, c.Split(""))
}

func TestChunkerSplitShortText(t *testing.T) {
	c := NewChunker(800, 100)
	chunks := c.Split("short policy text")
	assert.Len(t, chunks, 1)
	assert.Equal(t, "short policy text", chunks[0])
}

// 块数必须等于 ceil(长度/步长)，末块短于窗口也要保留
func TestChunkerSplitChunkCount(t *testing.T) {
	c := NewChunker(800, 100)
	step := 700

	lengths := []int{1, 699, 700, 701, 800, 1400, 1401, 5000}
	for _, n := range lengths {
		text := strings.Repeat("a", n)
		chunks := c.Split(text)
		want := (n + step - 1) / step
		assert.Len(t, chunks, want, "length %d", n)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 800)
		}
	}
}

// 相邻块在原文中精确重叠100个字符
func TestChunkerSplitOverlap(t *testing.T) {
	c := NewChunker(800, 100)

	var sb strings.Builder
	letters := "abcdefghijklmnopqrstuvwxyz"
	for i := 0; i < 2000; i++ {
		sb.WriteByte(letters[i%len(letters)])
	}
	text := sb.String()

	chunks := c.Split(text)
	assert.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-100:]
		assert.Equal(t, prevTail, chunks[i][:100])
	}
}

func TestChunkerDefaults(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, 800, c.chunkSize)
	assert.Equal(t, 0, c.overlap)

	c = NewChunker(100, 200)
	assert.Equal(t, 25, c.overlap)
}

// 输入先做CRLF归一化再切分
func TestChunkerSplitNormalizesCRLF(t *testing.T) {
	c := NewChunker(10, 0)
	chunks := c.Split("ab\r\ncd")
	assert.Len(t, chunks, 1)
	assert.Equal(t, "ab\ncd", chunks[0])
}
