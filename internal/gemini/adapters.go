package gemini

import (
	"context"
	"fmt"

	"github.com/insurhub/backend-go/internal/rag"
)

// Embedder 把Gemini服务适配为rag.Embedder
type Embedder struct {
	service    *Service
	model      string
	dimensions int
}

// NewEmbedder 创建Gemini向量化适配器
func NewEmbedder(service *Service, model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{
		service:    service,
		model:      model,
		dimensions: dimensions,
	}
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results, err := e.service.EmbedTexts(ctx, e.model, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrEmbedding, err)
	}
	return results, nil
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Ready() bool {
	return e.service.Ready()
}

// Generator 把Gemini服务适配为rag.Generator
type Generator struct {
	service *Service
	model   string
}

// NewGenerator 创建Gemini生成适配器
func NewGenerator(service *Service, model string) *Generator {
	if model == "" {
		model = DefaultGenerationModel
	}
	return &Generator{
		service: service,
		model:   model,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.service.GenerateContent(ctx, g.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rag.ErrGeneration, err)
	}
	return text, nil
}

func (g *Generator) Ready() bool {
	return g.service.Ready()
}
