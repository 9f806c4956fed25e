package handler

import "github.com/crizanp/crijan-blog-backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester *SemesterHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester: NewSemesterHandler(svc.Semester),
		Export:   NewExportHandler(svc.Export),
	}
}
