package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/crizanp/crijan-blog-backend/internal/model"
	pkgerrors "github.com/crizanp/crijan-blog-backend/pkg/errors"
)

// SemesterRepository 学期聚合数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id string) (*model.Semester, error)
	// GetByName 按名称不区分大小写精确匹配；重名时取最早创建的一条
	GetByName(ctx context.Context, name string) (*model.Semester, error)
	List(ctx context.Context) ([]model.Semester, error)
	// Update 以 version 做比较并交换，版本不一致返回 ErrOptimisticLock
	Update(ctx context.Context, semester *model.Semester) error
	Delete(ctx context.Context, id string) error
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	if semester.Version == 0 {
		semester.Version = 1
	}
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetByName(ctx context.Context, name string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order("created_at ASC").
		Order("semester_id ASC").
		Take(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) List(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("semester_id ASC").
		Find(&semesters).Error
	return semesters, err
}

// Update 整体回写聚合（名称 + 科目树），仅当库中 version 与读取时一致才生效
func (r *semesterRepo) Update(ctx context.Context, semester *model.Semester) error {
	oldVersion := semester.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("semester_id = ? AND version = ?", semester.SemesterID, oldVersion).
		Updates(map[string]interface{}{
			"name":       semester.Name,
			"subjects":   semester.Subjects,
			"version":    oldVersion + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	semester.Version = oldVersion + 1
	semester.UpdatedAt = now
	return nil
}

// Delete 物理删除学期，内嵌科目与文章随之删除
func (r *semesterRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		Delete(&model.Semester{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
