package service

import (
	"go.uber.org/zap"

	"github.com/crizanp/crijan-blog-backend/config"
	"github.com/crizanp/crijan-blog-backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester SemesterService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return &Service{
		Semester: NewSemesterService(repo, cfg.Store.MaxRetries, logger),
		Export:   NewExportService(repo, logger),
	}
}
