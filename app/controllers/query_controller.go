package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/insurhub/backend-go/internal/di"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/insurhub/backend-go/internal/services"
	"go.uber.org/zap"
)

// AskRequest 提问请求体
type AskRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
}

var askValidator = validator.New()

// QueryController 保单问答控制器
type QueryController struct {
	BaseController
	policyService *services.PolicyService
}

// Prepare 从DI容器获取业务服务
func (c *QueryController) Prepare() {
	if err := di.Invoke(func(s *services.PolicyService) {
		c.policyService = s
	}); err != nil {
		logger.Error("获取PolicyService失败", zap.Error(err))
	}
}

// Ask 回答保单相关问题
func (c *QueryController) Ask() {
	if c.policyService == nil {
		c.JSONError(http.StatusInternalServerError, "Service not initialized")
		return
	}

	var req AskRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := askValidator.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, "Question is required")
		return
	}

	answer, err := c.policyService.Ask(c.Ctx.Request.Context(), req.Question)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSON(http.StatusOK, answer)
}
