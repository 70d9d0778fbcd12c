package handler

import (
	"github.com/gin-gonic/gin"

	"gradebook/internal/dto"
	"gradebook/internal/service"
	"gradebook/pkg/response"
)

// GradeHandler 成绩模块 HTTP 处理器
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// ListGrades 当前用户可见的成绩
// GET /api/v1/grades
func (h *GradeHandler) ListGrades(c *gin.Context) {
	result, err := h.gradeSvc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetGrade 单条成绩（不可见时同样返回 404）
// GET /api/v1/grades/:id
func (h *GradeHandler) GetGrade(c *gin.Context) {
	result, err := h.gradeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateGrade 创建成绩
// POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req dto.SaveGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.gradeSvc.Create(c.Request.Context(), req.ToPatch())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateGrade 编辑成绩，未提供的字段保持不变
// PUT /api/v1/grades/:id
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	var req dto.SaveGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.gradeSvc.Update(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteGrade 删除成绩，需 confirm=true
// DELETE /api/v1/grades/:id?confirm=true
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	var req dto.DeleteGradeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.gradeSvc.Delete(c.Request.Context(), c.Param("id"), req.Confirm)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
