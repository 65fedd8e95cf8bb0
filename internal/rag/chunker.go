package rag

import "strings"

// 固定窗口分块默认参数
const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 100
)

// Chunker 固定窗口分块器，仅用于独立文本的兜底分块，入库走语义分块
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker 创建固定窗口分块器
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Split 滑动窗口切分文本
// 窗口800、步长700，相邻块在原文里精确重叠100字符，每块单独去除首尾空白，
// 末块可以短于窗口，空输入返回空序列
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	runes := []rune(text)

	step := c.chunkSize - c.overlap
	if step <= 0 {
		step = c.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
	}

	return chunks
}
