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

// ── 院系模块业务错误 ──

var (
	ErrFacultyNotFound     = errors.New("院系不存在")
	ErrFacultyNameExists   = errors.New("院系名称已存在")
	ErrFacultyHasSnapshots = errors.New("院系存在排课快照，无法删除")
	ErrFacultyMemberExists = errors.New("用户已是院系成员")
	ErrMemberNotFound      = errors.New("院系成员不存在")
)

// FacultyService 院系业务接口
type FacultyService interface {
	Create(ctx context.Context, req *dto.CreateFacultyRequest, callerID string) (*dto.FacultyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.FacultyResponse, error)
	List(ctx context.Context) ([]dto.FacultyResponse, error)
	// Delete 只允许删除无任何快照的院系（快照是审计链，不可级联销毁）
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, facultyID, userID string) error
	RemoveMember(ctx context.Context, facultyID, userID string) error
}

type facultyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFacultyService 创建 FacultyService 实例
func NewFacultyService(repo *repository.Repository, logger *zap.Logger) FacultyService {
	return &facultyService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *facultyService) Create(ctx context.Context, req *dto.CreateFacultyRequest, callerID string) (*dto.FacultyResponse, error) {
	if _, err := s.repo.Faculty.GetByName(ctx, req.Name); err == nil {
		return nil, ErrFacultyNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询院系失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	faculty := &model.Faculty{Name: req.Name}
	faculty.CreatedBy = &callerID
	faculty.UpdatedBy = &callerID

	if err := s.repo.Faculty.Create(ctx, faculty); err != nil {
		s.logger.Error("创建院系失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	return toFacultyResponse(faculty), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *facultyService) GetByID(ctx context.Context, id string) (*dto.FacultyResponse, error) {
	faculty, err := s.repo.Faculty.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacultyNotFound
		}
		s.logger.Error("查询院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toFacultyResponse(faculty), nil
}

// ────────────────────── List ──────────────────────

func (s *facultyService) List(ctx context.Context) ([]dto.FacultyResponse, error) {
	faculties, err := s.repo.Faculty.List(ctx)
	if err != nil {
		s.logger.Error("查询院系列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.FacultyResponse, 0, len(faculties))
	for i := range faculties {
		out = append(out, *toFacultyResponse(&faculties[i]))
	}
	return out, nil
}

// ────────────────────── Delete ──────────────────────

func (s *facultyService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Faculty.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		return err
	}

	count, err := s.repo.Schedule.CountByFaculty(ctx, id)
	if err != nil {
		s.logger.Error("统计院系快照失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrFacultyHasSnapshots
	}

	if err := s.repo.Faculty.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		s.logger.Error("删除院系失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("院系已删除", zap.String("id", id))
	return nil
}

// ────────────────────── AddMember ──────────────────────

func (s *facultyService) AddMember(ctx context.Context, facultyID, userID string) error {
	if _, err := s.repo.Faculty.GetByID(ctx, facultyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		return err
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.Faculty.AddMember(ctx, facultyID, userID); err != nil {
		s.logger.Error("添加院系成员失败",
			zap.String("faculty_id", facultyID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── RemoveMember ──────────────────────

func (s *facultyService) RemoveMember(ctx context.Context, facultyID, userID string) error {
	if err := s.repo.Faculty.RemoveMember(ctx, facultyID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		s.logger.Error("移除院系成员失败",
			zap.String("faculty_id", facultyID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ── 转换 ──

func toFacultyResponse(f *model.Faculty) *dto.FacultyResponse {
	resp := &dto.FacultyResponse{
		ID:        f.FacultyID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: f.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, m := range f.Members {
		member := dto.FacultyMemberResponse{UserID: m.UserID}
		if m.User != nil {
			member.Name = m.User.Name
			member.Email = m.User.Email
		}
		resp.Members = append(resp.Members, member)
	}
	return resp
}
