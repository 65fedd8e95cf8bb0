package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// QAEngine 问答编排器
// 每个问题走一条线性状态链：检索 → 组装上下文 → 草稿 → 润色 → 置信度 → 应答，
// 没有回到检索的反馈环。检索为空直接短路返回固定应答
type QAEngine struct {
	retriever *Retriever
	generator Generator
	logger    *zap.Logger
}

// NewQAEngine 创建问答编排器
func NewQAEngine(retriever *Retriever, generator Generator, logger *zap.Logger) *QAEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QAEngine{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Ask 回答一个问题
// 置信度是检索强度的代理指标（命中得分均值，保留3位小数），
// 不代表答案正确的概率
func (e *QAEngine) Ask(ctx context.Context, question string) (*Answer, error) {
	matches, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		// 设计内的短路，不是错误
		return &Answer{
			Answer:     NoRelevantAnswer,
			Sources:    []Citation{},
			Confidence: 0.0,
		}, nil
	}

	contextText, citations := assembleContext(matches)

	draftPrompt, err := RenderDraftPrompt(DraftPromptInput{
		Context:  contextText,
		Question: question,
	})
	if err != nil {
		return nil, err
	}
	draft, err := e.generator.Generate(ctx, draftPrompt)
	if err != nil {
		return nil, err
	}

	// 润色阶段重传同一份上下文，不做收窄
	refinePrompt, err := RenderRefinePrompt(RefinePromptInput{
		Question:       question,
		ExistingAnswer: draft,
		NewContext:     contextText,
	})
	if err != nil {
		return nil, err
	}
	refined, err := e.generator.Generate(ctx, refinePrompt)
	if err != nil {
		return nil, err
	}

	confidence := meanScore(matches)

	e.logger.Debug("question answered",
		zap.Int("matches", len(matches)),
		zap.Float64("confidence", confidence))

	return &Answer{
		Answer:     refined,
		Sources:    citations,
		Confidence: confidence,
	}, nil
}

// assembleContext 把命中段落的预览拼成上下文，每段带来源文件与页码标注，
// 同时构建与检索顺序一致的引用列表
func assembleContext(matches []QueryMatch) (string, []Citation) {
	var sb strings.Builder
	citations := make([]Citation, 0, len(matches))

	for _, m := range matches {
		meta := m.Metadata
		sb.WriteString(fmt.Sprintf("--- Source: %s | Page %d ---\n%s\n\n", meta.FileName, meta.PageNo, meta.TextPreview))

		citations = append(citations, Citation{
			FileName:    meta.FileName,
			PageNo:      meta.PageNo,
			ChunkIndex:  meta.ChunkIndex,
			TextPreview: meta.TextPreview,
			Score:       m.Score,
		})
	}

	return sb.String(), citations
}

// meanScore 命中得分算术平均，四舍五入保留3位小数
func meanScore(matches []QueryMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return math.Round(sum/float64(len(matches))*1000) / 1000
}
