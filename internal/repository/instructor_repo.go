package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

// InstructorFilter 教师列表过滤条件
type InstructorFilter struct {
	Role      string
	Status    string
	FacultyID string
}

// InstructorRepository 教师数据访问接口
type InstructorRepository interface {
	Create(ctx context.Context, instructor *model.Instructor) error
	GetByID(ctx context.Context, id string, year int) (*model.Instructor, error)
	List(ctx context.Context, year int, filter InstructorFilter) ([]model.Instructor, error)
	// ListByIDs 按标识符批量查询（校验器解析引用用）
	ListByIDs(ctx context.Context, year int, ids []string) ([]model.Instructor, error)
	Update(ctx context.Context, instructor *model.Instructor) error
}

type instructorRepo struct {
	db *gorm.DB
}

// NewInstructorRepo 创建 InstructorRepository 实例
func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

func (r *instructorRepo) Create(ctx context.Context, instructor *model.Instructor) error {
	return r.db.WithContext(ctx).Create(instructor).Error
}

func (r *instructorRepo) GetByID(ctx context.Context, id string, year int) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Faculty").
		Where("instructor_id = ? AND year = ?", id, year).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *instructorRepo) List(ctx context.Context, year int, filter InstructorFilter) ([]model.Instructor, error) {
	db := r.db.WithContext(ctx).Preload("Faculty").Where("year = ?", year)
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.FacultyID != "" {
		db = db.Where("faculty_id = ?", filter.FacultyID)
	}

	var instructors []model.Instructor
	err := db.Order("instructor_id ASC").Find(&instructors).Error
	return instructors, err
}

func (r *instructorRepo) ListByIDs(ctx context.Context, year int, ids []string) ([]model.Instructor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var instructors []model.Instructor
	err := r.db.WithContext(ctx).
		Where("year = ? AND instructor_id IN ?", year, ids).
		Find(&instructors).Error
	return instructors, err
}

func (r *instructorRepo) Update(ctx context.Context, instructor *model.Instructor) error {
	oldVersion := instructor.Version
	result := r.db.WithContext(ctx).
		Model(instructor).
		Where("instructor_id = ? AND year = ? AND version = ?", instructor.InstructorID, instructor.Year, oldVersion).
		Updates(map[string]interface{}{
			"name":       instructor.Name,
			"role":       instructor.Role,
			"faculty_id": instructor.FacultyID,
			"status":     instructor.Status,
			"updated_by": instructor.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	instructor.Version = oldVersion + 1
	return nil
}
