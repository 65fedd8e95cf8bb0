package rag

import (
	"fmt"
	"strings"
)

// 预览长度（字符数），与向量库metadata中的text_preview保持一致
const previewRunes = 300

// Page 文档中的一页原始文本，页码从1开始
type Page struct {
	PageNo int
	Text   string
}

// Document 一次上传产生的文档，DocID由上传流程生成，入库后不可变
type Document struct {
	DocID    string
	FileName string
	Pages    []Page
}

// CombinedText 拼接全部页文本（校验用）
func (d *Document) CombinedText() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Chunk 语义分块结果
type Chunk struct {
	ChunkID   string
	DocID     string
	PageNo    int
	Text      string
	Embedding []float32
}

// Preview 返回分块文本的前300个字符
func (c *Chunk) Preview() string {
	return TextPreview(c.Text)
}

// TextPreview 截取预览文本
func TextPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}

// EntryMetadata 向量库条目携带的元数据
type EntryMetadata struct {
	FileName    string `json:"file_name"`
	DocID       string `json:"doc_id"`
	PageNo      int    `json:"page_no"`
	ChunkIndex  string `json:"chunk_index"`
	TextPreview string `json:"text_preview"`
}

// IndexEntry 向量库的持久化单元，ID由文档ID、页码、分块ID确定性拼接
type IndexEntry struct {
	ID       string
	Vector   []float32
	Metadata EntryMetadata
}

// EntryID 生成向量条目ID，格式 docID::pageNo::chunkID
// 拼接规则固定，便于直接从ID定位来源
func EntryID(docID string, pageNo int, chunkID string) string {
	return fmt.Sprintf("%s::%d::%s", docID, pageNo, chunkID)
}

// QueryMatch 单次检索命中，仅在请求生命周期内存在
type QueryMatch struct {
	ID       string
	Score    float64
	Metadata EntryMetadata
}

// Citation 答案引用
type Citation struct {
	FileName    string  `json:"file_name"`
	PageNo      int     `json:"page_no"`
	ChunkIndex  string  `json:"chunk_index"`
	TextPreview string  `json:"text_preview"`
	Score       float64 `json:"score"`
}

// Answer 单个问题的应答结果，不做持久化
type Answer struct {
	Answer     string     `json:"answer"`
	Sources    []Citation `json:"sources"`
	Confidence float64    `json:"confidence"`
}

// IndexReport 一次文档入库的结果
type IndexReport struct {
	DocID       string
	FileName    string
	TotalChunks int
}
