package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Extractor 文本提取器
// 扫描目标文件所在目录但只解析请求的那一个文件，
// 共享暂存目录里其他文件的内容绝不允许混入结果
type Extractor struct {
	parsers *ParserManager
}

// NewExtractor 创建文本提取器
func NewExtractor() *Extractor {
	return &Extractor{parsers: NewParserManager()}
}

// Extract 提取单个文件的页序列
func (e *Extractor) Extract(ctx context.Context, filePath string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(filePath)
	fileName := filepath.Base(filePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取目录失败 %s: %v", ErrExtraction, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !e.parsers.Supports(entry.Name()) {
			continue
		}
		// 目录中可能有多个文件，只处理请求的这一个
		if entry.Name() != fileName {
			continue
		}

		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: 打开文件失败 %s: %v", ErrExtraction, fileName, err)
		}
		pages, err := e.parsers.ParseFile(f, entry.Name())
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		return pages, nil
	}

	return nil, fmt.Errorf("%w: 文件不存在或格式不支持: %s", ErrExtraction, fileName)
}
