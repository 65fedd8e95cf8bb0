package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/insurhub/backend-go/internal/config"
	"github.com/insurhub/backend-go/internal/di"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/insurhub/backend-go/internal/services"
	"github.com/insurhub/backend-go/internal/storage"
	"go.uber.org/zap"
)

// DocumentController 保单文档上传与原件取回控制器
type DocumentController struct {
	BaseController
	policyService *services.PolicyService
	archive       *storage.ArchiveStore
}

// Prepare 从DI容器获取业务服务
func (c *DocumentController) Prepare() {
	if err := di.Invoke(func(s *services.PolicyService, a *storage.ArchiveStore) {
		c.policyService = s
		c.archive = a
	}); err != nil {
		logger.Error("获取PolicyService失败", zap.Error(err))
	}
}

// Upload 上传并入库保单文档（multipart字段名file）
func (c *DocumentController) Upload() {
	if c.policyService == nil {
		c.JSONError(http.StatusInternalServerError, "Service not initialized")
		return
	}

	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "Missing file in form data")
		return
	}
	defer file.Close()

	if maxSize := config.AppConfig.FileUpload.MaxSize; maxSize > 0 && header.Size > maxSize {
		c.JSONError(http.StatusRequestEntityTooLarge, "Uploaded file exceeds size limit")
		return
	}

	result, err := c.policyService.UploadDocument(c.Ctx.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Download 取回归档的保单原件
func (c *DocumentController) Download() {
	if c.archive == nil {
		c.JSONError(http.StatusNotFound, "Document archive not configured")
		return
	}

	docID := c.Ctx.Input.Param(":doc_id")
	fileName := c.Ctx.Input.Param(":file_name")

	object, err := c.archive.FetchDocument(c.Ctx.Request.Context(), docID, fileName)
	if err != nil {
		c.JSONError(http.StatusNotFound, "Archived document not found")
		return
	}
	defer object.Close()

	c.Ctx.Output.Header("Content-Type", "application/octet-stream")
	c.Ctx.Output.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if _, err := io.Copy(c.Ctx.ResponseWriter, object); err != nil {
		logger.Warn("归档原件下载中断",
			zap.String("doc_id", docID),
			zap.String("file_name", fileName),
			zap.Error(err))
	}
}
