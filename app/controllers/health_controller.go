package controllers

import (
	"context"
	"time"

	"github.com/insurhub/backend-go/internal/di"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/insurhub/backend-go/internal/storage"
	"go.uber.org/zap"
)

// RootController 根控制器
type RootController struct {
	BaseController
}

func (c *RootController) Index() {
	c.JSON(200, map[string]string{"message": "Policy QA Service API"})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
	archive *storage.ArchiveStore
}

// Prepare 从DI容器获取归档存储（未配置时为nil）
func (c *HealthController) Prepare() {
	if err := di.Invoke(func(a *storage.ArchiveStore) {
		c.archive = a
	}); err != nil {
		logger.Error("获取ArchiveStore失败", zap.Error(err))
	}
}

// Health 服务健康状态，配置了归档存储时附带其可用性
func (c *HealthController) Health() {
	resp := map[string]string{"status": "healthy"}
	if c.archive != nil {
		ctx, cancel := context.WithTimeout(c.Ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.archive.HealthCheck(ctx); err != nil {
			resp["archive"] = "unavailable"
		} else {
			resp["archive"] = "healthy"
		}
	}
	c.JSON(200, resp)
}
