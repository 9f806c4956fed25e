package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/crizanp/crijan-blog-backend/internal/dto"
	"github.com/crizanp/crijan-blog-backend/internal/model"
	"github.com/crizanp/crijan-blog-backend/internal/repository"
	pkgerrors "github.com/crizanp/crijan-blog-backend/pkg/errors"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "学期不存在")
	ErrSubjectNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "科目不存在")
	ErrPostNotFound     = pkgerrors.New(pkgerrors.ErrNotFound, "文章不存在")

	ErrSubjectExists    = pkgerrors.New(pkgerrors.ErrConflict, "该学期下已存在同名科目")
	ErrSemesterConflict = pkgerrors.New(pkgerrors.ErrConflict, "学期已被其他操作修改，请稍后重试")

	ErrSemesterNameRequired = pkgerrors.New(pkgerrors.ErrValidation, "学期名称不能为空")
	ErrSubjectNameRequired  = pkgerrors.New(pkgerrors.ErrValidation, "科目名称不能为空")
	ErrPostTitleRequired    = pkgerrors.New(pkgerrors.ErrValidation, "文章标题不能为空")
	ErrPostContentRequired  = pkgerrors.New(pkgerrors.ErrValidation, "文章内容不能为空")
	ErrPostSlugInvalid      = pkgerrors.New(pkgerrors.ErrValidation, "无法由标题生成有效的 slug")
)

// SemesterService 学期 → 科目 → 文章 层级业务接口
//
// 读取与编辑按名称 / slug 寻址（名称不区分大小写），删除文章按 ID 寻址。
// 所有写操作都是对整个学期聚合的 读-改-写，并以 version 做乐观锁。
type SemesterService interface {
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	GetByName(ctx context.Context, name string) (*dto.SemesterResponse, error)
	ListSubjects(ctx context.Context, name string) ([]dto.SubjectIndexResponse, error)
	Create(ctx context.Context, name string) (*dto.SemesterResponse, error)
	Rename(ctx context.Context, name, newName string) (*dto.SemesterResponse, error)
	Delete(ctx context.Context, name string) error

	AddSubject(ctx context.Context, semesterName, subjectName string) (*dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, semesterName, subjectName string) error

	AddPost(ctx context.Context, semesterName, subjectName, title, content string) (*dto.PostResponse, error)
	EditPost(ctx context.Context, semesterName, subjectName, slug, title, content string) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, semesterID, subjectID, postID string) error
	ListPosts(ctx context.Context, semesterName, subjectName string) ([]dto.PostResponse, error)
	GetPost(ctx context.Context, semesterName, subjectName, slug string) (*dto.PostResponse, error)
}

type semesterService struct {
	repo       *repository.Repository
	maxRetries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
// maxRetries 为乐观锁冲突时的最大尝试次数（含首次）
func NewSemesterService(repo *repository.Repository, maxRetries int, logger *zap.Logger) SemesterService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &semesterService{
		repo:       repo,
		maxRetries: maxRetries,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toSemesterResponse(&semesters[i]))
	}
	return result, nil
}

// ────────────────────── GetByName ──────────────────────

func (s *semesterService) GetByName(ctx context.Context, name string) (*dto.SemesterResponse, error) {
	semester, err := s.loadByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

// ────────────────────── ListSubjects ──────────────────────

// ListSubjects 返回学期下的科目目录，文章去掉正文
func (s *semesterService) ListSubjects(ctx context.Context, name string) ([]dto.SubjectIndexResponse, error) {
	semester, err := s.loadByName(ctx, name)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SubjectIndexResponse, 0, len(semester.Subjects))
	for i := range semester.Subjects {
		sub := &semester.Subjects[i]
		posts := make([]dto.PostIndexResponse, 0, len(sub.Posts))
		for j := range sub.Posts {
			p := &sub.Posts[j]
			posts = append(posts, dto.PostIndexResponse{
				ID:        p.ID,
				Title:     p.Title,
				Slug:      p.Slug,
				CreatedAt: formatTime(p.CreatedAt),
				UpdatedAt: formatTime(p.UpdatedAt),
			})
		}
		result = append(result, dto.SubjectIndexResponse{
			ID:        sub.ID,
			Name:      sub.Name,
			Posts:     posts,
			CreatedAt: formatTime(sub.CreatedAt),
			UpdatedAt: formatTime(sub.UpdatedAt),
		})
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

// Create 新建空学期；不做重名检查
func (s *semesterService) Create(ctx context.Context, name string) (*dto.SemesterResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrSemesterNameRequired
	}

	semester := &model.Semester{
		Name:     name,
		Subjects: datatypes.JSONSlice[model.Subject]{},
	}
	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学期失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	return toSemesterResponse(semester), nil
}

// ────────────────────── Rename ──────────────────────

func (s *semesterService) Rename(ctx context.Context, name, newName string) (*dto.SemesterResponse, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, ErrSemesterNameRequired
	}

	semester, err := s.mutate(ctx, s.byName(name), func(sem *model.Semester) error {
		sem.Name = newName
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSemesterResponse(semester), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除学期，连同其全部科目与文章
func (s *semesterService) Delete(ctx context.Context, name string) error {
	semester, err := s.loadByName(ctx, name)
	if err != nil {
		return err
	}

	if err := s.repo.Semester.Delete(ctx, semester.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("删除学期失败", zap.String("id", semester.SemesterID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AddSubject ──────────────────────

func (s *semesterService) AddSubject(ctx context.Context, semesterName, subjectName string) (*dto.SubjectResponse, error) {
	if strings.TrimSpace(subjectName) == "" {
		return nil, ErrSubjectNameRequired
	}

	var added model.Subject
	_, err := s.mutate(ctx, s.byName(semesterName), func(sem *model.Semester) error {
		if sem.HasSubjectNamed(subjectName) {
			return ErrSubjectExists
		}
		now := s.now()
		added = model.Subject{
			ID:        uuid.New().String(),
			Name:      subjectName,
			Posts:     []model.Post{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		sem.Subjects = append(sem.Subjects, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSubjectResponse(&added), nil
}

// ────────────────────── DeleteSubject ──────────────────────

func (s *semesterService) DeleteSubject(ctx context.Context, semesterName, subjectName string) error {
	_, err := s.mutate(ctx, s.byName(semesterName), func(sem *model.Semester) error {
		i := sem.FindSubject(subjectName)
		if i < 0 {
			return ErrSubjectNotFound
		}
		sem.Subjects = append(sem.Subjects[:i], sem.Subjects[i+1:]...)
		return nil
	})
	return err
}

// ────────────────────── AddPost ──────────────────────

// AddPost 在科目末尾追加文章；slug 由标题生成，同科目内冲突时追加 -2、-3 …
func (s *semesterService) AddPost(ctx context.Context, semesterName, subjectName, title, content string) (*dto.PostResponse, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	baseSlug := Slugify(title)
	if baseSlug == "" {
		return nil, ErrPostSlugInvalid
	}

	var added model.Post
	_, err := s.mutate(ctx, s.byName(semesterName), func(sem *model.Semester) error {
		i := sem.FindSubject(subjectName)
		if i < 0 {
			return ErrSubjectNotFound
		}
		sub := &sem.Subjects[i]

		slug, ok := uniqueSlug(baseSlug, func(candidate string) bool {
			return sub.FindPostBySlug(candidate) >= 0
		})
		if !ok {
			return ErrPostSlugInvalid
		}

		now := s.now()
		added = model.Post{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Slug:      slug,
			CreatedAt: now,
			UpdatedAt: now,
		}
		sub.Posts = append(sub.Posts, added)
		sub.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPostResponse(&added), nil
}

// ────────────────────── EditPost ──────────────────────

// EditPost 覆盖标题与正文；slug 保持不变
func (s *semesterService) EditPost(ctx context.Context, semesterName, subjectName, slug, title, content string) (*dto.PostResponse, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	var edited model.Post
	_, err := s.mutate(ctx, s.byName(semesterName), func(sem *model.Semester) error {
		i := sem.FindSubject(subjectName)
		if i < 0 {
			return ErrSubjectNotFound
		}
		sub := &sem.Subjects[i]
		j := sub.FindPostBySlug(slug)
		if j < 0 {
			return ErrPostNotFound
		}

		now := s.now()
		post := &sub.Posts[j]
		post.Title = title
		post.Content = content
		post.UpdatedAt = now
		sub.UpdatedAt = now
		edited = *post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPostResponse(&edited), nil
}

// ────────────────────── DeletePost ──────────────────────

// DeletePost 按 学期ID / 科目ID / 文章ID 删除文章，其余文章保持原有顺序
func (s *semesterService) DeletePost(ctx context.Context, semesterID, subjectID, postID string) error {
	_, err := s.mutate(ctx, s.byID(semesterID), func(sem *model.Semester) error {
		i := sem.FindSubjectByID(subjectID)
		if i < 0 {
			return ErrSubjectNotFound
		}
		sub := &sem.Subjects[i]
		j := sub.FindPostByID(postID)
		if j < 0 {
			return ErrPostNotFound
		}
		sub.Posts = append(sub.Posts[:j], sub.Posts[j+1:]...)
		sub.UpdatedAt = s.now()
		return nil
	})
	return err
}

// ────────────────────── ListPosts ──────────────────────

// ListPosts 返回科目下的文章列表，正文截断为前 30 词并追加 "..."
func (s *semesterService) ListPosts(ctx context.Context, semesterName, subjectName string) ([]dto.PostResponse, error) {
	sub, err := s.loadSubject(ctx, semesterName, subjectName)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PostResponse, 0, len(sub.Posts))
	for i := range sub.Posts {
		resp := toPostResponse(&sub.Posts[i])
		resp.Content = previewContent(sub.Posts[i].Content, previewWords)
		result = append(result, *resp)
	}
	return result, nil
}

// ────────────────────── GetPost ──────────────────────

func (s *semesterService) GetPost(ctx context.Context, semesterName, subjectName, slug string) (*dto.PostResponse, error) {
	sub, err := s.loadSubject(ctx, semesterName, subjectName)
	if err != nil {
		return nil, err
	}
	j := sub.FindPostBySlug(slug)
	if j < 0 {
		return nil, ErrPostNotFound
	}
	return toPostResponse(&sub.Posts[j]), nil
}

// ── 内部辅助方法 ──

type loader func(ctx context.Context) (*model.Semester, error)

func (s *semesterService) byName(name string) loader {
	return func(ctx context.Context) (*model.Semester, error) {
		return s.loadByName(ctx, name)
	}
}

func (s *semesterService) byID(id string) loader {
	return func(ctx context.Context) (*model.Semester, error) {
		return s.loadByID(ctx, id)
	}
}

func (s *semesterService) loadByName(ctx context.Context, name string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return semester, nil
}

func (s *semesterService) loadByID(ctx context.Context, id string) (*model.Semester, error) {
	// 非法 UUID 直接视为不存在，避免数据库类型转换报错
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSemesterNotFound
	}
	semester, err := s.repo.Semester.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return semester, nil
}

func (s *semesterService) loadSubject(ctx context.Context, semesterName, subjectName string) (*model.Subject, error) {
	semester, err := s.loadByName(ctx, semesterName)
	if err != nil {
		return nil, err
	}
	i := semester.FindSubject(subjectName)
	if i < 0 {
		return nil, ErrSubjectNotFound
	}
	return &semester.Subjects[i], nil
}

// mutate 执行 读-改-写：每轮重新读取聚合并应用 apply，
// 写入遇到 version 冲突时整轮重试，超过 maxRetries 返回 ErrSemesterConflict。
// apply 返回的错误原样返回，且不会触发写入。
func (s *semesterService) mutate(ctx context.Context, load loader, apply func(*model.Semester) error) (*model.Semester, error) {
	for attempt := 1; ; attempt++ {
		semester, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := apply(semester); err != nil {
			return nil, err
		}

		err = s.repo.Semester.Update(ctx, semester)
		if err == nil {
			return semester, nil
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("写入学期失败", zap.String("id", semester.SemesterID), zap.Error(err))
			return nil, err
		}
		if attempt >= s.maxRetries {
			s.logger.Warn("学期乐观锁冲突，重试次数已用尽",
				zap.String("id", semester.SemesterID),
				zap.Int("attempts", attempt),
			)
			return nil, ErrSemesterConflict
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.logger.Debug("学期乐观锁冲突，重新读取后重试",
			zap.String("id", semester.SemesterID),
			zap.Int("attempt", attempt),
		)
	}
}

func validatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrPostTitleRequired
	}
	if strings.TrimSpace(content) == "" {
		return ErrPostContentRequired
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	subjects := make([]dto.SubjectResponse, 0, len(semester.Subjects))
	for i := range semester.Subjects {
		subjects = append(subjects, *toSubjectResponse(&semester.Subjects[i]))
	}
	return &dto.SemesterResponse{
		ID:        semester.SemesterID,
		Name:      semester.Name,
		Subjects:  subjects,
		Version:   semester.Version,
		CreatedAt: formatTime(semester.CreatedAt),
		UpdatedAt: formatTime(semester.UpdatedAt),
	}
}

func toSubjectResponse(sub *model.Subject) *dto.SubjectResponse {
	posts := make([]dto.PostResponse, 0, len(sub.Posts))
	for i := range sub.Posts {
		posts = append(posts, *toPostResponse(&sub.Posts[i]))
	}
	return &dto.SubjectResponse{
		ID:        sub.ID,
		Name:      sub.Name,
		Posts:     posts,
		CreatedAt: formatTime(sub.CreatedAt),
		UpdatedAt: formatTime(sub.UpdatedAt),
	}
}

func toPostResponse(p *model.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Slug:      p.Slug,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}
