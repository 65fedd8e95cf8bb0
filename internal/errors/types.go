package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/insurhub/backend-go/internal/rag"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误
	ErrCodeInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"

	// 管线错误
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeEmbeddingFailed   ErrorCode = "EMBEDDING_FAILED"
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeIndexConfig       ErrorCode = "INDEX_CONFIG_ERROR"
	ErrCodeInvalidFileFormat ErrorCode = "INVALID_FILE_FORMAT"
	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Type     ErrorType   `json:"type"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewValidationError 文档校验不通过，原因原样回给用户
func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeValidationFailed,
		Message:  reason,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewInvalidFileFormatError 不支持的上传文件类型
func NewInvalidFileFormatError(filename string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidFileFormat,
		Message:  fmt.Sprintf("Unsupported file type: %s", filename),
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewBadRequestError 请求参数错误
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeBadRequest,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewSystemError 创建系统错误
func NewSystemError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
	}
}

// FromPipeline 把管线错误翻译为带HTTP语义的AppError
// 提取失败是用户可修正的400，后端失败是503，索引配置错误是500
func FromPipeline(err error) *AppError {
	switch {
	case stderrors.Is(err, rag.ErrExtraction):
		return &AppError{
			Code:     ErrCodeExtractionFailed,
			Message:  "Failed to read the uploaded document",
			Type:     ErrorTypeValidation,
			HTTPCode: http.StatusBadRequest,
			Cause:    err,
		}
	case stderrors.Is(err, rag.ErrEmbedding):
		return &AppError{
			Code:     ErrCodeEmbeddingFailed,
			Message:  "Embedding backend unavailable",
			Type:     ErrorTypeExternal,
			HTTPCode: http.StatusServiceUnavailable,
			Cause:    err,
		}
	case stderrors.Is(err, rag.ErrGeneration):
		return &AppError{
			Code:     ErrCodeGenerationFailed,
			Message:  "Generation backend unavailable",
			Type:     ErrorTypeExternal,
			HTTPCode: http.StatusServiceUnavailable,
			Cause:    err,
		}
	case stderrors.Is(err, rag.ErrIndexConfig):
		return &AppError{
			Code:     ErrCodeIndexConfig,
			Message:  "Vector index configuration mismatch",
			Type:     ErrorTypeSystem,
			HTTPCode: http.StatusInternalServerError,
			Cause:    err,
		}
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewSystemError(ErrCodeInternalServer, "Internal server error").WithCause(err)
}
