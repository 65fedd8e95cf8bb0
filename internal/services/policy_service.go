package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insurhub/backend-go/internal/cache"
	"github.com/insurhub/backend-go/internal/config"
	apperrors "github.com/insurhub/backend-go/internal/errors"
	"github.com/insurhub/backend-go/internal/rag"
	"go.uber.org/zap"
)

// DocumentArchive 保单原件归档的最小接口，由storage.ArchiveStore实现
// 归档只是本地暂存之外的副本，任何失败都不阻断上传主流程
type DocumentArchive interface {
	ArchiveDocument(ctx context.Context, docID, fileName string, file io.Reader, size int64, contentType string) error
	RemoveDocument(ctx context.Context, docID, fileName string) error
}

// UploadResult 文档上传入库结果
type UploadResult struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	TotalChunksIndexed int    `json:"total_chunks_indexed"`
}

// PolicyService 保单问答业务服务
// 负责上传入库与提问两条链路的编排，组件本身由bootstrap装配
type PolicyService struct {
	extractor *rag.Extractor
	validator *rag.DocumentValidator
	indexer   *rag.DocumentIndexer
	engine    *rag.QAEngine
	answers   *cache.AnswerCache
	archive   DocumentArchive
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewPolicyService 创建保单问答服务实例
func NewPolicyService(
	extractor *rag.Extractor,
	validator *rag.DocumentValidator,
	indexer *rag.DocumentIndexer,
	engine *rag.QAEngine,
	answers *cache.AnswerCache,
	archive DocumentArchive,
	metrics *MetricsService,
) *PolicyService {
	return &PolicyService{
		extractor: extractor,
		validator: validator,
		indexer:   indexer,
		engine:    engine,
		answers:   answers,
		archive:   archive,
		metrics:   metrics,
		logger:    zap.L(),
	}
}

// allowedExtension 判断扩展名是否在允许清单内
func allowedExtension(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range config.AppConfig.FileUpload.AllowedTypes {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// UploadDocument 上传并入库一份保单文档
// 流程：扩展名门禁 → 落盘暂存 → 归档 → 抽取校验 → 语义分块入库
// 校验不通过时删除暂存文件与归档副本并返回校验错误。
// 归档对象键、暂存文件名与向量索引的doc_id共用同一个生成ID，便于互相回溯
func (s *PolicyService) UploadDocument(ctx context.Context, fileName string, file io.Reader) (*UploadResult, error) {
	if !allowedExtension(fileName) {
		s.metrics.RecordRejection("file_format")
		return nil, apperrors.NewInvalidFileFormatError(filepath.Ext(fileName))
	}

	uploadDir := config.AppConfig.FileUpload.UploadPath
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeUploadFailed, "Failed to prepare upload directory").WithCause(err)
	}

	// uuid前缀避免同名文件互相覆盖，暂存目录按单文件解析
	docID := uuid.NewString()
	stagedName := fmt.Sprintf("%s_%s", docID, filepath.Base(fileName))
	stagedPath := filepath.Join(uploadDir, stagedName)

	dst, err := os.Create(stagedPath)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeUploadFailed, "Failed to save uploaded file").WithCause(err)
	}
	written, err := io.Copy(dst, file)
	closeErr := dst.Close()
	if err != nil || closeErr != nil {
		os.Remove(stagedPath)
		if err == nil {
			err = closeErr
		}
		return nil, apperrors.NewSystemError(apperrors.ErrCodeUploadFailed, "Failed to save uploaded file").WithCause(err)
	}

	archived := s.archiveOriginal(ctx, docID, fileName, stagedPath, written)

	pages, err := s.extractor.Extract(ctx, stagedPath)
	if err != nil {
		os.Remove(stagedPath)
		if archived {
			s.removeArchived(ctx, docID, fileName)
		}
		return nil, apperrors.FromPipeline(err)
	}

	valid, reason := s.validator.Validate(pages)
	if !valid {
		os.Remove(stagedPath)
		if archived {
			s.removeArchived(ctx, docID, fileName)
		}
		s.metrics.RecordRejection("validation")
		s.logger.Warn("文档校验未通过",
			zap.String("file_name", fileName),
			zap.String("reason", reason))
		return nil, apperrors.NewValidationError(reason)
	}

	start := time.Now()
	report, err := s.indexer.IndexDocument(ctx, docID, stagedPath)
	s.metrics.RecordIndexing(reportChunks(report), time.Since(start), err)
	if err != nil {
		return nil, apperrors.FromPipeline(err)
	}

	return &UploadResult{
		Status:             "success",
		Message:            fmt.Sprintf("Document '%s' validated and indexed successfully.", fileName),
		TotalChunksIndexed: report.TotalChunks,
	}, nil
}

func reportChunks(report *rag.IndexReport) int {
	if report == nil {
		return 0
	}
	return report.TotalChunks
}

// archiveOriginal 把原件归档到对象存储，失败只记日志不阻断入库
func (s *PolicyService) archiveOriginal(ctx context.Context, docID, fileName, stagedPath string, size int64) bool {
	if s.archive == nil {
		return false
	}
	src, err := os.Open(stagedPath)
	if err != nil {
		s.logger.Warn("归档读取暂存文件失败", zap.String("path", stagedPath), zap.Error(err))
		return false
	}
	defer src.Close()
	if err := s.archive.ArchiveDocument(ctx, docID, fileName, src, size, "application/octet-stream"); err != nil {
		s.logger.Warn("原件归档失败", zap.String("file_name", fileName), zap.Error(err))
		return false
	}
	return true
}

// removeArchived 回收被拒文档的归档副本，失败只记日志
func (s *PolicyService) removeArchived(ctx context.Context, docID, fileName string) {
	if err := s.archive.RemoveDocument(ctx, docID, fileName); err != nil {
		s.logger.Warn("归档副本回收失败",
			zap.String("doc_id", docID),
			zap.String("file_name", fileName),
			zap.Error(err))
	}
}

// Ask 回答一个保单相关问题
// 命中缓存直接返回；空检索是合法结果，同样会被缓存
func (s *PolicyService) Ask(ctx context.Context, question string) (*rag.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewBadRequestError("Question must not be empty")
	}

	if cached := s.answers.Get(ctx, question); cached != nil {
		s.metrics.RecordCacheHit()
		s.logger.Debug("问答缓存命中", zap.String("question", question))
		return cached, nil
	}

	start := time.Now()
	answer, err := s.engine.Ask(ctx, question)
	empty := err == nil && answer != nil && len(answer.Sources) == 0
	s.metrics.RecordAnswer(time.Since(start), empty, err)
	if err != nil {
		return nil, apperrors.FromPipeline(err)
	}

	s.answers.Set(ctx, question, answer)
	return answer, nil
}
