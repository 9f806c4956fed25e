package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/crizanp/crijan-blog-backend/internal/dto"
	"github.com/crizanp/crijan-blog-backend/internal/service"
	"github.com/crizanp/crijan-blog-backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SemesterService ──

type mockSemesterService struct {
	err error

	semester  *dto.SemesterResponse
	semesters []dto.SemesterResponse
	subjects  []dto.SubjectIndexResponse
	subject   *dto.SubjectResponse
	post      *dto.PostResponse
	posts     []dto.PostResponse

	// 最近一次调用收到的参数
	args []string
}

func (m *mockSemesterService) record(args ...string) { m.args = args }

func (m *mockSemesterService) List(_ context.Context) ([]dto.SemesterResponse, error) {
	return m.semesters, m.err
}
func (m *mockSemesterService) GetByName(_ context.Context, name string) (*dto.SemesterResponse, error) {
	m.record(name)
	return m.semester, m.err
}
func (m *mockSemesterService) ListSubjects(_ context.Context, name string) ([]dto.SubjectIndexResponse, error) {
	m.record(name)
	return m.subjects, m.err
}
func (m *mockSemesterService) Create(_ context.Context, name string) (*dto.SemesterResponse, error) {
	m.record(name)
	return m.semester, m.err
}
func (m *mockSemesterService) Rename(_ context.Context, name, newName string) (*dto.SemesterResponse, error) {
	m.record(name, newName)
	return m.semester, m.err
}
func (m *mockSemesterService) Delete(_ context.Context, name string) error {
	m.record(name)
	return m.err
}
func (m *mockSemesterService) AddSubject(_ context.Context, semesterName, subjectName string) (*dto.SubjectResponse, error) {
	m.record(semesterName, subjectName)
	return m.subject, m.err
}
func (m *mockSemesterService) DeleteSubject(_ context.Context, semesterName, subjectName string) error {
	m.record(semesterName, subjectName)
	return m.err
}
func (m *mockSemesterService) AddPost(_ context.Context, semesterName, subjectName, title, content string) (*dto.PostResponse, error) {
	m.record(semesterName, subjectName, title, content)
	return m.post, m.err
}
func (m *mockSemesterService) EditPost(_ context.Context, semesterName, subjectName, slug, title, content string) (*dto.PostResponse, error) {
	m.record(semesterName, subjectName, slug, title, content)
	return m.post, m.err
}
func (m *mockSemesterService) DeletePost(_ context.Context, semesterID, subjectID, postID string) error {
	m.record(semesterID, subjectID, postID)
	return m.err
}
func (m *mockSemesterService) ListPosts(_ context.Context, semesterName, subjectName string) ([]dto.PostResponse, error) {
	m.record(semesterName, subjectName)
	return m.posts, m.err
}
func (m *mockSemesterService) GetPost(_ context.Context, semesterName, subjectName, slug string) (*dto.PostResponse, error) {
	m.record(semesterName, subjectName, slug)
	return m.post, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSemester(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// semesterRoutes 按生产路由表注册学期路由（不含鉴权）
func semesterRoutes(h *SemesterHandler) *gin.Engine {
	r := gin.New()
	s := r.Group("/semesters")
	s.GET("", h.ListSemesters)
	s.POST("", h.CreateSemester)
	s.GET("/:semester", h.GetSemester)
	s.PUT("/:semester", h.RenameSemester)
	s.DELETE("/:semester", h.DeleteSemester)
	s.GET("/:semester/subjects", h.ListSubjects)
	s.POST("/:semester/subject", h.AddSubject)
	s.DELETE("/:semester/subject/:subject", h.DeleteSubject)
	s.POST("/:semester/subjects/:subject", h.AddPost)
	s.PUT("/:semester/subjects/:subject/post/:post", h.EditPost)
	s.DELETE("/:semester/subjects/:subject/post/:post", h.DeletePost)
	s.GET("/:semester/subjects/:subject/posts", h.ListPosts)
	s.GET("/:semester/subjects/:subject/posts/:post", h.GetPost)
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func assertArgs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected args %q, got %q", want, got)
	}
}

// ═══════════════════════════════════════════════════════════
// SemesterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSemesterHandler_ListSemesters(t *testing.T) {
	mock := &mockSemesterService{semesters: []dto.SemesterResponse{{ID: "s1", Name: "1st Sem"}}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"name":"1st Sem"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestSemesterHandler_GetSemester_DecodesName(t *testing.T) {
	mock := &mockSemesterService{semester: &dto.SemesterResponse{ID: "s1", Name: "1st Sem"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters/1st%20Sem", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem")
}

func TestSemesterHandler_CreateSemester(t *testing.T) {
	mock := &mockSemesterService{semester: &dto.SemesterResponse{ID: "s1", Name: "1st Sem"}}
	r := semesterRoutes(NewSemesterHandler(mock))

	w := serve(r, "POST", "/semesters", jsonBody(dto.CreateSemesterRequest{Name: "1st Sem"}))
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem")
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSemesterHandler_CreateSemester_BadJSON(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected code 10001, got %d", resp.Code)
	}
	if mock.args != nil {
		t.Error("参数校验失败不应调用 Service")
	}
}

func TestSemesterHandler_CreateSemester_MissingName(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters", jsonBody(map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSemesterHandler_RenameSemester(t *testing.T) {
	mock := &mockSemesterService{semester: &dto.SemesterResponse{ID: "s1", Name: "First"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "PUT", "/semesters/1st%20Sem",
		jsonBody(dto.RenameSemesterRequest{Name: "First"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "First")
}

func TestSemesterHandler_DeleteSemester(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "DELETE", "/semesters/1st%20Sem", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem")
}

func TestSemesterHandler_AddSubject(t *testing.T) {
	mock := &mockSemesterService{subject: &dto.SubjectResponse{ID: "sub1", Name: "Physics"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters/1st%20Sem/subject",
		jsonBody(dto.AddSubjectRequest{SubjectName: "Physics"}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics")
}

func TestSemesterHandler_AddSubject_Duplicate(t *testing.T) {
	mock := &mockSemesterService{err: service.ErrSubjectExists}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters/1st%20Sem/subject",
		jsonBody(dto.AddSubjectRequest{SubjectName: "Physics"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14004 {
		t.Errorf("expected code 14004, got %d", resp.Code)
	}
}

func TestSemesterHandler_DeleteSubject(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "DELETE", "/semesters/1st%20Sem/subject/Physics", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics")
}

func TestSemesterHandler_AddPost(t *testing.T) {
	mock := &mockSemesterService{post: &dto.PostResponse{ID: "p1", Slug: "hello-world"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters/1st%20Sem/subjects/Physics",
		jsonBody(dto.PostRequest{Title: "Hello, World!", Content: "body"}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics", "Hello, World!", "body")
	if !strings.Contains(w.Body.String(), `"slug":"hello-world"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestSemesterHandler_AddPost_MissingContent(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "POST", "/semesters/1st%20Sem/subjects/Physics",
		jsonBody(map[string]string{"title": "Hello"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSemesterHandler_EditPost(t *testing.T) {
	mock := &mockSemesterService{post: &dto.PostResponse{ID: "p1", Slug: "hello-world", Title: "New"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "PUT", "/semesters/1st%20Sem/subjects/Physics/post/hello-world",
		jsonBody(dto.PostRequest{Title: "New", Content: "v2"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics", "hello-world", "New", "v2")
}

func TestSemesterHandler_DeletePost_ByIDs(t *testing.T) {
	mock := &mockSemesterService{}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "DELETE", "/semesters/sem-id/subjects/sub-id/post/post-id", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "sem-id", "sub-id", "post-id")
}

func TestSemesterHandler_ListPosts(t *testing.T) {
	mock := &mockSemesterService{posts: []dto.PostResponse{{ID: "p1", Content: "one two..."}}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters/1st%20Sem/subjects/Physics/posts", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics")
}

func TestSemesterHandler_GetPost(t *testing.T) {
	mock := &mockSemesterService{post: &dto.PostResponse{ID: "p1", Slug: "motion"}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters/1st%20Sem/subjects/Physics/posts/motion", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem", "Physics", "motion")
}

func TestSemesterHandler_ListSubjects(t *testing.T) {
	mock := &mockSemesterService{subjects: []dto.SubjectIndexResponse{{ID: "sub1", Name: "Physics"}}}
	w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters/1st%20Sem/subjects", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	assertArgs(t, mock.args, "1st Sem")
}

func TestSemesterHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"SemesterNotFound", service.ErrSemesterNotFound, 404, 14001},
		{"SubjectNotFound", service.ErrSubjectNotFound, 404, 14002},
		{"PostNotFound", service.ErrPostNotFound, 404, 14003},
		{"SubjectExists", service.ErrSubjectExists, 400, 14004},
		{"Conflict", service.ErrSemesterConflict, 400, 14005},
		{"TitleRequired", service.ErrPostTitleRequired, 400, 10001},
		{"SlugInvalid", service.ErrPostSlugInvalid, 400, 10001},
		{"InternalError", errors.New("connection refused"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSemesterService{err: tt.err}
			w := serve(semesterRoutes(NewSemesterHandler(mock)), "GET", "/semesters/1st%20Sem/subjects/Physics/posts/motion", nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if tt.wantStatus == 500 && strings.Contains(resp.Message, "connection refused") {
				t.Error("内部错误不应向客户端暴露细节")
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func exportEngine(h *ExportHandler) *gin.Engine {
	r := gin.New()
	r.GET("/semesters/:semester/export", h.ExportSemester)
	return r
}

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "1st-sem.xlsx",
	}
	w := serve(exportEngine(NewExportHandler(mock)), "GET", "/semesters/1st%20Sem/export", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "1st-sem.xlsx") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestExportHandler_NotFound(t *testing.T) {
	mock := &mockExportService{err: service.ErrSemesterNotFound}
	w := serve(exportEngine(NewExportHandler(mock)), "GET", "/semesters/missing/export", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_GenerateFail(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportGenerateFail}
	w := serve(exportEngine(NewExportHandler(mock)), "GET", "/semesters/1st%20Sem/export", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
