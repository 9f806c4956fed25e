package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crizanp/crijan-blog-backend/internal/model"
	pkgerrors "github.com/crizanp/crijan-blog-backend/pkg/errors"
)

// ── Mock SemesterRepository ──
//
// 与真实仓储一致：读取返回深拷贝，Update 按 version 做比较并交换。

type mockSemesterRepo struct {
	mu        sync.Mutex
	semesters map[string]*model.Semester
	order     []string
	created   int

	updateCalls int
	updateErr   error
	// beforeUpdate 在每次 Update 进入临界区前调用（不持锁），用于模拟并发写入
	beforeUpdate func(call int)
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if semester.SemesterID == "" {
		semester.SemesterID = uuid.New().String()
	}
	if semester.Version == 0 {
		semester.Version = 1
	}
	// 保证创建时间严格递增，重名时按创建顺序决出第一条
	m.created++
	ts := time.Date(2026, 1, 1, 0, 0, m.created, 0, time.UTC)
	semester.CreatedAt = ts
	semester.UpdatedAt = ts

	m.semesters[semester.SemesterID] = cloneSemester(semester)
	m.order = append(m.order, semester.SemesterID)
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.semesters[id]; ok {
		return cloneSemester(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetByName(_ context.Context, name string) (*model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if s, ok := m.semesters[id]; ok && strings.EqualFold(s.Name, name) {
			return cloneSemester(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.Semester
	for _, id := range m.order {
		if s, ok := m.semesters[id]; ok {
			result = append(result, *cloneSemester(s))
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.mu.Lock()
	m.updateCalls++
	call := m.updateCalls
	hook := m.beforeUpdate
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.semesters[semester.SemesterID]
	if !ok || stored.Version != semester.Version {
		return pkgerrors.ErrOptimisticLock
	}

	semester.Version++
	semester.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	m.semesters[semester.SemesterID] = cloneSemester(semester)
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.semesters[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.semesters, id)
	return nil
}

func (m *mockSemesterRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCalls
}

func cloneSemester(s *model.Semester) *model.Semester {
	out := *s
	out.Subjects = make([]model.Subject, len(s.Subjects))
	for i, sub := range s.Subjects {
		sub.Posts = append([]model.Post(nil), sub.Posts...)
		out.Subjects[i] = sub
	}
	return &out
}
