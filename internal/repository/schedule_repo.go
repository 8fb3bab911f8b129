package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chsky1600/qicas/internal/model"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

// ScheduleRepository 排课快照与工作指针数据访问接口
type ScheduleRepository interface {
	// Create 幂等写入快照：ID 已存在时不覆盖、不报错，
	// 返回 created=false 与库中已有记录
	Create(ctx context.Context, schedule *model.Schedule) (created bool, result *model.Schedule, err error)
	GetByID(ctx context.Context, snapshotID string) (*model.Schedule, error)
	ListByFacultyYear(ctx context.Context, facultyID string, year int, limit int) ([]model.Schedule, error)
	CountByFaculty(ctx context.Context, facultyID string) (int64, error)

	GetWorkingPointer(ctx context.Context, facultyID string, year int) (*model.WorkingSchedule, error)
	// GetWorking 返回工作指针指向的快照本体
	GetWorking(ctx context.Context, facultyID string, year int) (*model.Schedule, error)
	// SetWorking 原子切换工作指针：快照必须通过校验，
	// 指针更新走乐观锁，切换记录写入 promotion_logs，三步同事务
	SetWorking(ctx context.Context, facultyID string, year int, snapshotID string, operatorID *string) error
	ListPromotionLogs(ctx context.Context, facultyID string, year int) ([]model.PromotionLog, error)

	// WorkingReferencesCourse 判断某课程是否被任一工作快照引用（归档守卫用）
	WorkingReferencesCourse(ctx context.Context, year int, courseID string) (bool, error)
	WorkingReferencesInstructor(ctx context.Context, year int, instructorID string) (bool, error)
	// ListWorkingReferencingInstructor 返回引用该教师的全部工作快照
	ListWorkingReferencingInstructor(ctx context.Context, year int, instructorID string) ([]model.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) (bool, *model.Schedule, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "snapshot_id"}},
			DoNothing: true,
		}).
		Create(schedule)
	if result.Error != nil {
		return false, nil, result.Error
	}
	if result.RowsAffected > 0 {
		return true, schedule, nil
	}

	// 内容寻址保证同 ID 必同内容，回读已有记录即可
	existing, err := r.GetByID(ctx, schedule.SnapshotID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, snapshotID string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("snapshot_id = ?", snapshotID).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) ListByFacultyYear(ctx context.Context, facultyID string, year int, limit int) ([]model.Schedule, error) {
	db := r.db.WithContext(ctx).
		Where("faculty_id = ? AND year = ?", facultyID, year).
		Order("created_at DESC, snapshot_id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var schedules []model.Schedule
	err := db.Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) CountByFaculty(ctx context.Context, facultyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("faculty_id = ?", facultyID).
		Count(&count).Error
	return count, err
}

func (r *scheduleRepo) GetWorkingPointer(ctx context.Context, facultyID string, year int) (*model.WorkingSchedule, error) {
	var pointer model.WorkingSchedule
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND year = ?", facultyID, year).
		First(&pointer).Error
	if err != nil {
		return nil, err
	}
	return &pointer, nil
}

func (r *scheduleRepo) GetWorking(ctx context.Context, facultyID string, year int) (*model.Schedule, error) {
	pointer, err := r.GetWorkingPointer(ctx, facultyID, year)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pointer.SnapshotID)
}

func (r *scheduleRepo) SetWorking(ctx context.Context, facultyID string, year int, snapshotID string, operatorID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var snapshot model.Schedule
		if err := tx.Where("snapshot_id = ?", snapshotID).First(&snapshot).Error; err != nil {
			return err
		}
		// 快照必须归属于目标院系与学年，跨界提升视为不存在
		if snapshot.FacultyID != facultyID || snapshot.Year != year {
			return gorm.ErrRecordNotFound
		}
		if !snapshot.ValidationPass {
			return pkgerrors.ErrSnapshotNotValidated
		}

		var pointer model.WorkingSchedule
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("faculty_id = ? AND year = ?", facultyID, year).
			First(&pointer).Error

		var oldSnapshotID *string
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pointer = model.WorkingSchedule{
				FacultyID:  facultyID,
				Year:       year,
				SnapshotID: snapshotID,
				UpdatedBy:  operatorID,
				Version:    1,
			}
			if err := tx.Create(&pointer).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// 重复提升同一快照：幂等，不产生审计记录
			if pointer.SnapshotID == snapshotID {
				return nil
			}
			old := pointer.SnapshotID
			oldSnapshotID = &old

			result := tx.Model(&model.WorkingSchedule{}).
				Where("faculty_id = ? AND year = ? AND version = ?", facultyID, year, pointer.Version).
				Updates(map[string]interface{}{
					"snapshot_id": snapshotID,
					"updated_by":  operatorID,
					"version":     pointer.Version + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.ErrOptimisticLock
			}
		}

		log := model.PromotionLog{
			FacultyID:     facultyID,
			Year:          year,
			OldSnapshotID: oldSnapshotID,
			NewSnapshotID: snapshotID,
			OperatorID:    operatorID,
		}
		return tx.Create(&log).Error
	})
}

func (r *scheduleRepo) ListPromotionLogs(ctx context.Context, facultyID string, year int) ([]model.PromotionLog, error) {
	var logs []model.PromotionLog
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND year = ?", facultyID, year).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *scheduleRepo) WorkingReferencesCourse(ctx context.Context, year int, courseID string) (bool, error) {
	return r.workingReferences(ctx, year, "course_id", courseID)
}

func (r *scheduleRepo) WorkingReferencesInstructor(ctx context.Context, year int, instructorID string) (bool, error) {
	return r.workingReferences(ctx, year, "instructor_id", instructorID)
}

// workingReferences 用 JSONB 包含查询判断工作快照的分配集合是否引用某实体
func (r *scheduleRepo) workingReferences(ctx context.Context, year int, key, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Joins("JOIN working_schedules ws ON ws.snapshot_id = schedules.snapshot_id").
		Where("ws.year = ?", year).
		Where("schedules.assignments @> jsonb_build_array(jsonb_build_object(?::text, ?::text))", key, id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *scheduleRepo) ListWorkingReferencingInstructor(ctx context.Context, year int, instructorID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Joins("JOIN working_schedules ws ON ws.snapshot_id = schedules.snapshot_id").
		Where("ws.year = ?", year).
		Where("schedules.assignments @> jsonb_build_array(jsonb_build_object('instructor_id', ?::text))", instructorID).
		Order("schedules.faculty_id ASC").
		Find(&schedules).Error
	return schedules, err
}
