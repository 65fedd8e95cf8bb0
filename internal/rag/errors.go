package rag

import "errors"

// 管线错误类别，调用方用errors.Is区分
// 检索为空不是错误，编排器对空结果有独立的固定应答
var (
	// ErrExtraction 文件不可读或格式不支持
	ErrExtraction = errors.New("extraction failed")
	// ErrEmbedding 向量化后端失败，禁止用零向量兜底
	ErrEmbedding = errors.New("embedding failed")
	// ErrGeneration 生成后端失败，与"答案未找到"严格区分
	ErrGeneration = errors.New("generation failed")
	// ErrIndexConfig 向量库维度/度量配置不匹配，启动期致命错误
	ErrIndexConfig = errors.New("index configuration mismatch")
)
