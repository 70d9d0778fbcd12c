package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gradebook/internal/service"
	"gradebook/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGrades 导出当前用户可见的成绩
// GET /api/v1/grades/export
func (h *ExportHandler) ExportGrades(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportGrades(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExportGenerateFail) {
			response.Error(c, http.StatusInternalServerError, 14001, "生成 Excel 文件失败")
			return
		}
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
