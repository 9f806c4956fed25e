package handler

import (
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/crizanp/crijan-blog-backend/internal/service"
	"github.com/crizanp/crijan-blog-backend/pkg/response"
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

// ExportSemester 导出学期目录为 Excel
// GET /api/v1/semesters/:semester/export
func (h *ExportHandler) ExportSemester(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSemester(c.Request.Context(), c.Param("semester"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, xlsxContentType, url.QueryEscape(filename), buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
