package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/api/middleware"
	"gradebook/internal/editor"
	"gradebook/internal/policy"
	"gradebook/internal/service"
	apperrors "gradebook/pkg/errors"
	"gradebook/pkg/response"
)

// handleServiceError 将 Service 层错误映射为统一响应
// 顺序敏感：具体错误在前，按错误类别兜底在后
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, 10002, "未认证")
	case errors.Is(err, apperrors.ErrAuthorization):
		response.Forbidden(c, 10003, "当前角色无权执行该操作")
	case errors.Is(err, policy.ErrConfirmationRequired):
		response.BadRequest(c, 12002, "删除操作需要确认（confirm=true）")
	case errors.Is(err, policy.ErrMissingRequiredField):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12001, "缺少必填字段", err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
	case errors.Is(err, policy.ErrGradeNotFound):
		response.NotFound(c, 12004, "成绩不存在")
	case errors.Is(err, editor.ErrNotClosed):
		response.Conflict(c, 13001, "编辑器已打开")
	case errors.Is(err, editor.ErrNotOpen):
		response.Conflict(c, 13002, "编辑器未打开")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// handleBindError 请求体绑定失败
func handleBindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
