package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
)

// FacultyRepository 院系数据访问接口
type FacultyRepository interface {
	Create(ctx context.Context, faculty *model.Faculty) error
	GetByID(ctx context.Context, id string) (*model.Faculty, error)
	GetByName(ctx context.Context, name string) (*model.Faculty, error)
	List(ctx context.Context) ([]model.Faculty, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, facultyID, userID string) error
	RemoveMember(ctx context.Context, facultyID, userID string) error
}

type facultyRepo struct {
	db *gorm.DB
}

// NewFacultyRepo 创建 FacultyRepository 实例
func NewFacultyRepo(db *gorm.DB) FacultyRepository {
	return &facultyRepo{db: db}
}

func (r *facultyRepo) Create(ctx context.Context, faculty *model.Faculty) error {
	return r.db.WithContext(ctx).Create(faculty).Error
}

func (r *facultyRepo) GetByID(ctx context.Context, id string) (*model.Faculty, error) {
	var faculty model.Faculty
	err := r.db.WithContext(ctx).
		Preload("Members").Preload("Members.User").
		Where("faculty_id = ?", id).
		First(&faculty).Error
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (r *facultyRepo) GetByName(ctx context.Context, name string) (*model.Faculty, error) {
	var faculty model.Faculty
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&faculty).Error
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (r *facultyRepo) List(ctx context.Context) ([]model.Faculty, error) {
	var faculties []model.Faculty
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&faculties).Error
	return faculties, err
}

func (r *facultyRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("faculty_id = ?", id).Delete(&model.FacultyMember{}).Error; err != nil {
			return err
		}
		result := tx.Where("faculty_id = ?", id).Delete(&model.Faculty{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *facultyRepo) AddMember(ctx context.Context, facultyID, userID string) error {
	member := model.FacultyMember{FacultyID: facultyID, UserID: userID}
	// 重复添加视为幂等
	return r.db.WithContext(ctx).
		Where("faculty_id = ? AND user_id = ?", facultyID, userID).
		FirstOrCreate(&member).Error
}

func (r *facultyRepo) RemoveMember(ctx context.Context, facultyID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("faculty_id = ? AND user_id = ?", facultyID, userID).
		Delete(&model.FacultyMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
