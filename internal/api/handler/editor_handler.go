package handler

import (
	"github.com/gin-gonic/gin"

	"gradebook/internal/dto"
	"gradebook/internal/service"
	"gradebook/pkg/response"
)

// EditorHandler 编辑器 HTTP 处理器
type EditorHandler struct {
	editorSvc service.EditorService
}

// NewEditorHandler 创建 EditorHandler
func NewEditorHandler(editorSvc service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// GetEditor 编辑器当前状态
// GET /api/v1/editor
func (h *EditorHandler) GetEditor(c *gin.Context) {
	h.respond(c, func() (interface{}, error) { return h.editorSvc.Get(c.Request.Context()) })
}

// Add 打开创建编辑器
// POST /api/v1/editor/add
func (h *EditorHandler) Add(c *gin.Context) {
	h.respond(c, func() (interface{}, error) { return h.editorSvc.Add(c.Request.Context()) })
}

// Edit 打开指定成绩的编辑器
// POST /api/v1/editor/edit/:id
func (h *EditorHandler) Edit(c *gin.Context) {
	h.respond(c, func() (interface{}, error) { return h.editorSvc.Edit(c.Request.Context(), c.Param("id")) })
}

// Save 保存编辑器内容并关闭
// POST /api/v1/editor/save
func (h *EditorHandler) Save(c *gin.Context) {
	var req dto.SaveGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	h.respond(c, func() (interface{}, error) { return h.editorSvc.Save(c.Request.Context(), req.ToPatch()) })
}

// Cancel 关闭编辑器，不保存
// POST /api/v1/editor/cancel
func (h *EditorHandler) Cancel(c *gin.Context) {
	h.respond(c, func() (interface{}, error) { return h.editorSvc.Cancel(c.Request.Context()) })
}

func (h *EditorHandler) respond(c *gin.Context, fn func() (interface{}, error)) {
	result, err := fn()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
