package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/crizanp/crijan-blog-backend/internal/dto"
	"github.com/crizanp/crijan-blog-backend/internal/service"
	pkgerrors "github.com/crizanp/crijan-blog-backend/pkg/errors"
	"github.com/crizanp/crijan-blog-backend/pkg/response"
)

// SemesterHandler 学期 / 科目 / 文章 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// ── 学期 ──

// ListSemesters 获取全部学期（含科目与文章）
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// GetSemester 按名称获取学期
// GET /api/v1/semesters/:semester
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetByName(c.Request.Context(), c.Param("semester"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// ListSubjects 获取学期下的科目目录
// GET /api/v1/semesters/:semester/subjects
func (h *SemesterHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.semesterSvc.ListSubjects(c.Request.Context(), c.Param("semester"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// CreateSemester 创建学期
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// RenameSemester 重命名学期
// PUT /api/v1/semesters/:semester
func (h *SemesterHandler) RenameSemester(c *gin.Context) {
	var req dto.RenameSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	semester, err := h.semesterSvc.Rename(c.Request.Context(), c.Param("semester"), req.Name)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// DeleteSemester 删除学期及其全部科目与文章
// DELETE /api/v1/semesters/:semester
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	if err := h.semesterSvc.Delete(c.Request.Context(), c.Param("semester")); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 科目 ──

// AddSubject 向学期添加科目
// POST /api/v1/semesters/:semester/subject
func (h *SemesterHandler) AddSubject(c *gin.Context) {
	var req dto.AddSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	subject, err := h.semesterSvc.AddSubject(c.Request.Context(), c.Param("semester"), req.SubjectName)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, subject)
}

// DeleteSubject 删除科目及其全部文章
// DELETE /api/v1/semesters/:semester/subject/:subject
func (h *SemesterHandler) DeleteSubject(c *gin.Context) {
	err := h.semesterSvc.DeleteSubject(c.Request.Context(), c.Param("semester"), c.Param("subject"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 文章 ──

// AddPost 向科目添加文章
// POST /api/v1/semesters/:semester/subjects/:subject
func (h *SemesterHandler) AddPost(c *gin.Context) {
	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	post, err := h.semesterSvc.AddPost(c.Request.Context(),
		c.Param("semester"), c.Param("subject"), req.Title, req.Content)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, post)
}

// EditPost 编辑文章标题与正文，:post 为 slug
// PUT /api/v1/semesters/:semester/subjects/:subject/post/:post
func (h *SemesterHandler) EditPost(c *gin.Context) {
	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	post, err := h.semesterSvc.EditPost(c.Request.Context(),
		c.Param("semester"), c.Param("subject"), c.Param("post"), req.Title, req.Content)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, post)
}

// DeletePost 删除文章；三段路径参数均为 ID
// DELETE /api/v1/semesters/:semester/subjects/:subject/post/:post
func (h *SemesterHandler) DeletePost(c *gin.Context) {
	err := h.semesterSvc.DeletePost(c.Request.Context(),
		c.Param("semester"), c.Param("subject"), c.Param("post"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListPosts 获取科目下的文章列表（正文为摘要）
// GET /api/v1/semesters/:semester/subjects/:subject/posts
func (h *SemesterHandler) ListPosts(c *gin.Context) {
	posts, err := h.semesterSvc.ListPosts(c.Request.Context(), c.Param("semester"), c.Param("subject"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, gin.H{"list": posts})
}

// GetPost 按 slug 获取文章全文
// GET /api/v1/semesters/:semester/subjects/:subject/posts/:post
func (h *SemesterHandler) GetPost(c *gin.Context) {
	post, err := h.semesterSvc.GetPost(c.Request.Context(),
		c.Param("semester"), c.Param("subject"), c.Param("post"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, post)
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 14002, err.Error())
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 14003, err.Error())
	case errors.Is(err, service.ErrSubjectExists):
		response.BadRequest(c, 14004, err.Error())
	case errors.Is(err, service.ErrSemesterConflict):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10004, err.Error())
	case errors.Is(err, pkgerrors.ErrConflict):
		response.BadRequest(c, 10009, err.Error())
	default:
		response.InternalError(c)
	}
}
