package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// RenameSemesterRequest 重命名学期请求
type RenameSemesterRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// AddSubjectRequest 新增科目请求
type AddSubjectRequest struct {
	SubjectName string `json:"subject_name" binding:"required,max=200"`
}

// PostRequest 新增 / 编辑文章请求
type PostRequest struct {
	Title   string `json:"title"   binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SemesterResponse 学期完整信息（含科目与文章正文）
type SemesterResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Subjects  []SubjectResponse `json:"subjects"`
	Version   int               `json:"version"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

// SubjectResponse 科目完整信息
type SubjectResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Posts     []PostResponse `json:"posts"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// SubjectIndexResponse 科目目录项：文章不含正文
type SubjectIndexResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Posts     []PostIndexResponse `json:"posts"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

// PostResponse 文章信息；列表接口中 Content 为前 30 词摘要
type PostResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PostIndexResponse 文章目录项（无正文）
type PostIndexResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
