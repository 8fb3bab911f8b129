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

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound       = errors.New("课程不存在")
	ErrCourseExists         = errors.New("该学年已存在同标识符课程")
	ErrCourseTermInvalid    = errors.New("学期取值非法，允许: fall / winter / full_year")
	ErrCourseInWorkingSched = errors.New("课程被工作排课引用，无法归档")
	ErrCourseArchived       = errors.New("课程已归档，不可修改")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.UpsertCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string, year int) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	Patch(ctx context.Context, id string, year int, req *dto.PatchCourseRequest, callerID string) (*dto.CourseResponse, error)
	// Archive 软删除：被工作快照引用的课程拒绝归档
	Archive(ctx context.Context, id string, year int, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.UpsertCourseRequest, callerID string) (*dto.CourseResponse, error) {
	if !model.ValidTerm(req.Term) {
		return nil, ErrCourseTermInvalid
	}

	if _, err := s.repo.Course.GetByID(ctx, req.CourseID, req.Year); err == nil {
		return nil, ErrCourseExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		CourseID: req.CourseID,
		Year:     req.Year,
		Title:    req.Title,
		Term:     req.Term,
		Status:   model.StatusActive,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string, year int) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	if req.Term != "" && !model.ValidTerm(req.Term) {
		return nil, ErrCourseTermInvalid
	}

	courses, err := s.repo.Course.List(ctx, req.Year, repository.CourseFilter{
		Term:   req.Term,
		Status: req.Status,
	})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Int("year", req.Year), zap.Error(err))
		return nil, err
	}

	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *toCourseResponse(&courses[i]))
	}
	return out, nil
}

// ────────────────────── Patch ──────────────────────

func (s *courseService) Patch(ctx context.Context, id string, year int, req *dto.PatchCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.Status == model.StatusArchived {
		return nil, ErrCourseArchived
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Term != nil {
		if !model.ValidTerm(*req.Term) {
			return nil, ErrCourseTermInvalid
		}
		course.Term = *req.Term
	}
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── Archive ──────────────────────

func (s *courseService) Archive(ctx context.Context, id string, year int, callerID string) error {
	course, err := s.repo.Course.GetByID(ctx, id, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.Status == model.StatusArchived {
		return nil // 重复归档幂等
	}

	// 归档守卫：工作排课仍引用该课程时拒绝
	referenced, err := s.repo.Schedule.WorkingReferencesCourse(ctx, year, id)
	if err != nil {
		s.logger.Error("检查课程引用失败", zap.String("course_id", id), zap.Error(err))
		return err
	}
	if referenced {
		return ErrCourseInWorkingSched
	}

	course.Status = model.StatusArchived
	course.UpdatedBy = &callerID
	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("归档课程失败", zap.String("course_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("课程已归档", zap.String("course_id", id), zap.Int("year", year))
	return nil
}

// ── 转换 ──

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		CourseID:  c.CourseID,
		Year:      c.Year,
		Title:     c.Title,
		Term:      c.Term,
		Status:    c.Status,
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
