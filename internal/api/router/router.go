package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crizanp/crijan-blog-backend/config"
	"github.com/crizanp/crijan-blog-backend/internal/api/handler"
	"github.com/crizanp/crijan-blog-backend/internal/api/middleware"
	"github.com/crizanp/crijan-blog-backend/pkg/jwt"
	"github.com/crizanp/crijan-blog-backend/pkg/response"
)

// Pinger 健康检查依赖，由 repository.Repository 实现
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// blacklist 为 nil 时不检查 Token 吊销（Redis 不可用时的降级模式）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, blacklist middleware.TokenBlacklist, db Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, 50300, "数据库不可用")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuth(jwtMgr, blacklist)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学期模块：读接口公开，写接口需管理员 Token
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.POST("", auth, h.Semester.CreateSemester)
			semesters.GET("/:semester", h.Semester.GetSemester)
			semesters.PUT("/:semester", auth, h.Semester.RenameSemester)
			semesters.DELETE("/:semester", auth, h.Semester.DeleteSemester)

			// 科目
			semesters.GET("/:semester/subjects", h.Semester.ListSubjects)
			semesters.POST("/:semester/subject", auth, h.Semester.AddSubject)
			semesters.DELETE("/:semester/subject/:subject", auth, h.Semester.DeleteSubject)

			// 文章；编辑按 slug 寻址，删除按 ID 寻址
			semesters.POST("/:semester/subjects/:subject", auth, h.Semester.AddPost)
			semesters.PUT("/:semester/subjects/:subject/post/:post", auth, h.Semester.EditPost)
			semesters.DELETE("/:semester/subjects/:subject/post/:post", auth, h.Semester.DeletePost)
			semesters.GET("/:semester/subjects/:subject/posts", h.Semester.ListPosts)
			semesters.GET("/:semester/subjects/:subject/posts/:post", h.Semester.GetPost)

			// 导出
			semesters.GET("/:semester/export", auth, h.Export.ExportSemester)
		}
	}

	return r
}
