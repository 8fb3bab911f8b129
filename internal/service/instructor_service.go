package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 教师模块业务错误 ──

var (
	ErrInstructorNotFound       = errors.New("教师不存在")
	ErrInstructorExists         = errors.New("该学年已存在同标识符教师")
	ErrInstructorRoleInvalid    = errors.New("教师角色取值非法，允许: lecturer / professor / ta")
	ErrInstructorInWorkingSched = errors.New("教师被工作排课引用，无法归档")
	ErrInstructorArchived       = errors.New("教师已归档，不可修改")
)

// InstructorService 教师业务接口
type InstructorService interface {
	Create(ctx context.Context, req *dto.UpsertInstructorRequest, callerID string) (*dto.InstructorResponse, error)
	GetByID(ctx context.Context, id string, year int) (*dto.InstructorResponse, error)
	List(ctx context.Context, req *dto.InstructorListRequest) ([]dto.InstructorResponse, error)
	Patch(ctx context.Context, id string, year int, req *dto.PatchInstructorRequest, callerID string) (*dto.InstructorResponse, error)
	Archive(ctx context.Context, id string, year int, callerID string) error
	// ListAssignments 返回该教师在所有工作排课中的分配
	ListAssignments(ctx context.Context, id string, year int) ([]dto.InstructorAssignmentResponse, error)
}

type instructorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInstructorService 创建 InstructorService 实例
func NewInstructorService(repo *repository.Repository, logger *zap.Logger) InstructorService {
	return &instructorService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *instructorService) Create(ctx context.Context, req *dto.UpsertInstructorRequest, callerID string) (*dto.InstructorResponse, error) {
	if !model.ValidInstructorRole(req.Role) {
		return nil, ErrInstructorRoleInvalid
	}

	if _, err := s.repo.Instructor.GetByID(ctx, req.InstructorID, req.Year); err == nil {
		return nil, ErrInstructorExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教师失败", zap.String("instructor_id", req.InstructorID), zap.Error(err))
		return nil, err
	}

	if req.FacultyID != "" {
		if _, err := s.repo.Faculty.GetByID(ctx, req.FacultyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrFacultyNotFound
			}
			return nil, err
		}
	}

	instructor := &model.Instructor{
		InstructorID: req.InstructorID,
		Year:         req.Year,
		Name:         req.Name,
		Role:         req.Role,
		FacultyID:    model.NullableUUID(req.FacultyID),
		Status:       model.StatusActive,
	}
	instructor.CreatedBy = &callerID
	instructor.UpdatedBy = &callerID

	if err := s.repo.Instructor.Create(ctx, instructor); err != nil {
		s.logger.Error("创建教师失败", zap.String("instructor_id", req.InstructorID), zap.Error(err))
		return nil, err
	}

	return toInstructorResponse(instructor), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *instructorService) GetByID(ctx context.Context, id string, year int) (*dto.InstructorResponse, error) {
	instructor, err := s.repo.Instructor.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		s.logger.Error("查询教师失败", zap.String("instructor_id", id), zap.Error(err))
		return nil, err
	}
	return toInstructorResponse(instructor), nil
}

// ────────────────────── List ──────────────────────

func (s *instructorService) List(ctx context.Context, req *dto.InstructorListRequest) ([]dto.InstructorResponse, error) {
	if req.Role != "" && !model.ValidInstructorRole(req.Role) {
		return nil, ErrInstructorRoleInvalid
	}

	instructors, err := s.repo.Instructor.List(ctx, req.Year, repository.InstructorFilter{
		Role:      req.Role,
		Status:    req.Status,
		FacultyID: req.FacultyID,
	})
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Int("year", req.Year), zap.Error(err))
		return nil, err
	}

	out := make([]dto.InstructorResponse, 0, len(instructors))
	for i := range instructors {
		out = append(out, *toInstructorResponse(&instructors[i]))
	}
	return out, nil
}

// ────────────────────── Patch ──────────────────────

func (s *instructorService) Patch(ctx context.Context, id string, year int, req *dto.PatchInstructorRequest, callerID string) (*dto.InstructorResponse, error) {
	instructor, err := s.repo.Instructor.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	if instructor.Status == model.StatusArchived {
		return nil, ErrInstructorArchived
	}

	if req.Name != nil {
		instructor.Name = *req.Name
	}
	if req.Role != nil {
		if !model.ValidInstructorRole(*req.Role) {
			return nil, ErrInstructorRoleInvalid
		}
		instructor.Role = *req.Role
	}
	if req.FacultyID != nil {
		if *req.FacultyID != "" {
			if _, err := s.repo.Faculty.GetByID(ctx, *req.FacultyID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrFacultyNotFound
				}
				return nil, err
			}
		}
		instructor.FacultyID = model.NullableUUID(*req.FacultyID)
	}
	instructor.UpdatedBy = &callerID

	if err := s.repo.Instructor.Update(ctx, instructor); err != nil {
		s.logger.Error("更新教师失败", zap.String("instructor_id", id), zap.Error(err))
		return nil, err
	}

	// 角色等字段变更后关联数据可能过期，重新加载
	updated, err := s.repo.Instructor.GetByID(ctx, id, year)
	if err != nil {
		return toInstructorResponse(instructor), nil
	}
	return toInstructorResponse(updated), nil
}

// ────────────────────── Archive ──────────────────────

func (s *instructorService) Archive(ctx context.Context, id string, year int, callerID string) error {
	instructor, err := s.repo.Instructor.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstructorNotFound
		}
		return err
	}
	if instructor.Status == model.StatusArchived {
		return nil // 重复归档幂等
	}

	referenced, err := s.repo.Schedule.WorkingReferencesInstructor(ctx, year, id)
	if err != nil {
		s.logger.Error("检查教师引用失败", zap.String("instructor_id", id), zap.Error(err))
		return err
	}
	if referenced {
		return ErrInstructorInWorkingSched
	}

	instructor.Status = model.StatusArchived
	instructor.UpdatedBy = &callerID
	if err := s.repo.Instructor.Update(ctx, instructor); err != nil {
		s.logger.Error("归档教师失败", zap.String("instructor_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("教师已归档", zap.String("instructor_id", id), zap.Int("year", year))
	return nil
}

// ────────────────────── ListAssignments ──────────────────────

func (s *instructorService) ListAssignments(ctx context.Context, id string, year int) ([]dto.InstructorAssignmentResponse, error) {
	if _, err := s.repo.Instructor.GetByID(ctx, id, year); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}

	schedules, err := s.repo.Schedule.ListWorkingReferencingInstructor(ctx, year, id)
	if err != nil {
		s.logger.Error("查询教师分配失败", zap.String("instructor_id", id), zap.Error(err))
		return nil, err
	}

	out := make([]dto.InstructorAssignmentResponse, 0)
	for i := range schedules {
		for _, a := range schedules[i].Assignments {
			if a.InstructorID != id {
				continue
			}
			out = append(out, dto.InstructorAssignmentResponse{
				FacultyID:  schedules[i].FacultyID,
				Year:       schedules[i].Year,
				SnapshotID: schedules[i].SnapshotID,
				CourseID:   a.CourseID,
				TimeSlot:   a.TimeSlot,
			})
		}
	}
	return out, nil
}

// ── 转换 ──

func toInstructorResponse(i *model.Instructor) *dto.InstructorResponse {
	resp := &dto.InstructorResponse{
		InstructorID: i.InstructorID,
		Year:         i.Year,
		Name:         i.Name,
		Role:         i.Role,
		Status:       i.Status,
		CreatedAt:    i.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    i.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if i.Faculty != nil {
		resp.Faculty = &dto.FacultyBrief{ID: i.Faculty.FacultyID, Name: i.Faculty.Name}
	}
	return resp
}
