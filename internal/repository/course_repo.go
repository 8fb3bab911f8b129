package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

// CourseFilter 课程列表过滤条件
type CourseFilter struct {
	Term   string
	Status string
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string, year int) (*model.Course, error)
	List(ctx context.Context, year int, filter CourseFilter) ([]model.Course, error)
	// ListByIDs 按标识符批量查询（校验器解析引用用）
	ListByIDs(ctx context.Context, year int, ids []string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string, year int) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND year = ?", id, year).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, year int, filter CourseFilter) ([]model.Course, error) {
	db := r.db.WithContext(ctx).Where("year = ?", year)
	if filter.Term != "" {
		db = db.Where("term = ?", filter.Term)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var courses []model.Course
	err := db.Order("course_id ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByIDs(ctx context.Context, year int, ids []string) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("year = ? AND course_id IN ?", year, ids).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	oldVersion := course.Version
	result := r.db.WithContext(ctx).
		Model(course).
		Where("course_id = ? AND year = ? AND version = ?", course.CourseID, course.Year, oldVersion).
		Updates(map[string]interface{}{
			"title":      course.Title,
			"term":       course.Term,
			"status":     course.Status,
			"updated_by": course.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version = oldVersion + 1
	return nil
}
