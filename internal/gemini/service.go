package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/insurhub/backend-go/internal/logger"
)

// 默认模型，与向量库768维对应
const (
	DefaultEmbeddingModel  = "text-embedding-004"
	DefaultGenerationModel = "gemini-2.0-flash"
	DefaultDimensions      = 768
)

// Service Gemini REST服务，提供Embedding与文本生成
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter sync.Mutex
}

// embedContentRequest 单条向量化请求
type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

// batchEmbedRequest 批量向量化请求
type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

// batchEmbedResponse 批量向量化响应，embeddings与请求同序
type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// generateRequest 文本生成请求
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse 文本生成响应
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// apiError Gemini API错误
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewService 创建Gemini服务
func NewService(apiKey string) *Service {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		logger.Warn("Gemini API key is empty")
		return nil
	}

	return &Service{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client: &http.Client{
			Timeout: 60 * time.Second, // 生成调用可能较慢
		},
	}
}

// EmbedTexts 批量向量化，结果与输入同序
func (s *Service) EmbedTexts(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("gemini service not initialized")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := batchEmbedRequest{Requests: make([]embedContentRequest, 0, len(texts))}
	for _, text := range texts {
		reqBody.Requests = append(reqBody.Requests, embedContentRequest{
			Model:   "models/" + model,
			Content: content{Parts: []part{{Text: text}}},
		})
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", s.baseURL, model)
	var resp batchEmbedResponse
	if err := s.post(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embedding count mismatch: got=%d want=%d", len(resp.Embeddings), len(texts))
	}

	results := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		results[i] = e.Values
	}
	return results, nil
}

// GenerateContent 文本生成，温度固定为0
func (s *Service) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("gemini service not initialized")
	}
	if model == "" {
		model = DefaultGenerationModel
	}

	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: 0.0},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, model)
	var resp generateResponse
	if err := s.post(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response has no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (s *Service) post(ctx context.Context, url string, reqBody, out interface{}) error {
	s.limiter.Lock()
	defer s.limiter.Unlock()

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	httpResp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini api error (%d %s): %s", apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("gemini api error: status=%d body=%s", httpResp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	return nil
}

// Ready 服务是否可用
func (s *Service) Ready() bool {
	return s != nil && s.client != nil && s.apiKey != ""
}
