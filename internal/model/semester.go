package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Semester 学期聚合，对应 semesters
// 科目与文章整体以 jsonb 内嵌存储，一次读取即可得到完整树。
type Semester struct {
	SemesterID string                       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	Name       string                       `gorm:"type:varchar(100);not null"                     json:"name"` // e.g. "1st Sem"
	Subjects   datatypes.JSONSlice[Subject] `gorm:"type:jsonb;not null;default:'[]'"               json:"subjects"`
	VersionedModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// Subject 科目，仅存在于所属学期内
type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Posts     []Post    `json:"posts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post 科目下的文章；Slug 创建时生成，之后不再变化
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindSubject 按名称查找科目（不区分大小写），返回下标；未找到返回 -1
func (s *Semester) FindSubject(name string) int {
	for i := range s.Subjects {
		if strings.EqualFold(s.Subjects[i].Name, name) {
			return i
		}
	}
	return -1
}

// FindSubjectByID 按 ID 查找科目，返回下标；未找到返回 -1
func (s *Semester) FindSubjectByID(id string) int {
	for i := range s.Subjects {
		if s.Subjects[i].ID == id {
			return i
		}
	}
	return -1
}

// HasSubjectNamed 是否已存在同名科目（区分大小写，逐字节比较）
func (s *Semester) HasSubjectNamed(name string) bool {
	for i := range s.Subjects {
		if s.Subjects[i].Name == name {
			return true
		}
	}
	return false
}

// FindPostBySlug 按 slug 精确查找文章，返回下标；未找到返回 -1
func (s *Subject) FindPostBySlug(slug string) int {
	for i := range s.Posts {
		if s.Posts[i].Slug == slug {
			return i
		}
	}
	return -1
}

// FindPostByID 按 ID 查找文章，返回下标；未找到返回 -1
func (s *Subject) FindPostByID(id string) int {
	for i := range s.Posts {
		if s.Posts[i].ID == id {
			return i
		}
	}
	return -1
}
