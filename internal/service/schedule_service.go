package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

// ── 排课模块业务错误 ──

var (
	ErrScheduleNotFound   = errors.New("排课快照不存在")
	ErrWorkingNotFound    = errors.New("该院系学年尚无工作排课")
	ErrParentNotFound     = errors.New("父快照不存在或不属于该院系学年")
	ErrValidationRequired = errors.New("快照未通过校验，不能设为工作排课")
)

// ScheduleService 排课快照业务接口
type ScheduleService interface {
	// Propose 提交新快照：先校验后落库，校验失败的快照同样保留
	Propose(ctx context.Context, req *dto.ProposeScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	GetSnapshot(ctx context.Context, snapshotID string) (*dto.ScheduleResponse, error)
	GetWorking(ctx context.Context, facultyID string, year int) (*dto.ScheduleResponse, error)
	ListSnapshots(ctx context.Context, facultyID string, year int) ([]dto.ScheduleSummaryResponse, error)
	// Lineage 返回最新快照到根的父链，按根→最新排列
	Lineage(ctx context.Context, facultyID string, year int) ([]dto.ScheduleSummaryResponse, error)
	// Promote 将快照设为工作排课，目标必须已通过校验
	Promote(ctx context.Context, snapshotID string, callerID string) (*dto.ScheduleResponse, error)
	ListPromotionLogs(ctx context.Context, facultyID string, year int) ([]dto.PromotionLogResponse, error)
}

type scheduleService struct {
	repo       *repository.Repository
	validation ValidationService
	logger     *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, validation ValidationService, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, validation: validation, logger: logger}
}

// ────────────────────── Propose ──────────────────────

func (s *scheduleService) Propose(ctx context.Context, req *dto.ProposeScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	if _, err := s.repo.Faculty.GetByID(ctx, req.FacultyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}

	if req.ParentSnapshotID != nil {
		parent, err := s.repo.Schedule.GetByID(ctx, *req.ParentSnapshotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.FacultyID != req.FacultyID || parent.Year != req.Year {
			return nil, ErrParentNotFound
		}
	}

	assignments := make([]model.Assignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		assignments = append(assignments, model.Assignment{
			CourseID:     a.CourseID,
			InstructorID: a.InstructorID,
			TimeSlot:     a.TimeSlot,
		})
	}

	result, err := s.validation.Validate(ctx, req.Year, assignments)
	if err != nil {
		return nil, err
	}

	snapshotID := model.ComputeSnapshotID(req.Year, req.FacultyID, req.ParentSnapshotID, assignments)
	schedule := &model.Schedule{
		SnapshotID:       snapshotID,
		Year:             req.Year,
		FacultyID:        req.FacultyID,
		ParentSnapshotID: req.ParentSnapshotID,
		Assignments:      assignments,
		ValidationPass:   result.Pass,
		Violations:       result.Violations,
		CreatedBy:        &callerID,
	}

	created, stored, err := s.repo.Schedule.Create(ctx, schedule)
	if err != nil {
		s.logger.Error("保存快照失败", zap.String("snapshot_id", snapshotID), zap.Error(err))
		return nil, err
	}
	if created {
		s.logger.Info("快照已创建",
			zap.String("snapshot_id", snapshotID),
			zap.String("faculty_id", req.FacultyID),
			zap.Int("year", req.Year),
			zap.Bool("pass", result.Pass))
	}

	return s.toScheduleResponse(ctx, stored), nil
}

// ────────────────────── GetSnapshot ──────────────────────

func (s *scheduleService) GetSnapshot(ctx context.Context, snapshotID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询快照失败", zap.String("snapshot_id", snapshotID), zap.Error(err))
		return nil, err
	}
	return s.toScheduleResponse(ctx, schedule), nil
}

// ────────────────────── GetWorking ──────────────────────

func (s *scheduleService) GetWorking(ctx context.Context, facultyID string, year int) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetWorking(ctx, facultyID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkingNotFound
		}
		s.logger.Error("查询工作排课失败",
			zap.String("faculty_id", facultyID), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	resp := toScheduleResponseBase(schedule)
	resp.IsWorking = true
	return resp, nil
}

// ────────────────────── ListSnapshots ──────────────────────

func (s *scheduleService) ListSnapshots(ctx context.Context, facultyID string, year int) ([]dto.ScheduleSummaryResponse, error) {
	schedules, err := s.repo.Schedule.ListByFacultyYear(ctx, facultyID, year, 0)
	if err != nil {
		s.logger.Error("查询快照列表失败",
			zap.String("faculty_id", facultyID), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	workingID := s.workingSnapshotID(ctx, facultyID, year)
	out := make([]dto.ScheduleSummaryResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, toScheduleSummary(&schedules[i], workingID))
	}
	return out, nil
}

// ────────────────────── Lineage ──────────────────────

func (s *scheduleService) Lineage(ctx context.Context, facultyID string, year int) ([]dto.ScheduleSummaryResponse, error) {
	schedules, err := s.repo.Schedule.ListByFacultyYear(ctx, facultyID, year, 1)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return []dto.ScheduleSummaryResponse{}, nil
	}

	// 从最新快照沿父指针回溯到根
	// 父链不可能成环（快照 ID 由父 ID 参与散列，自引用无法构造）
	var chain []*model.Schedule
	current := &schedules[0]
	for {
		chain = append(chain, current)
		if current.ParentSnapshotID == nil {
			break
		}
		parent, err := s.repo.Schedule.GetByID(ctx, *current.ParentSnapshotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break // 链在此中断，返回可达部分
			}
			return nil, err
		}
		current = parent
	}

	workingID := s.workingSnapshotID(ctx, facultyID, year)
	out := make([]dto.ScheduleSummaryResponse, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- { // 根 → 最新
		out = append(out, toScheduleSummary(chain[i], workingID))
	}
	return out, nil
}

// ────────────────────── Promote ──────────────────────

func (s *scheduleService) Promote(ctx context.Context, snapshotID string, callerID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	err = s.repo.Schedule.SetWorking(ctx, schedule.FacultyID, schedule.Year, snapshotID, &callerID)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrSnapshotNotValidated):
			return nil, ErrValidationRequired
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrScheduleNotFound
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("切换工作排课失败", zap.String("snapshot_id", snapshotID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("工作排课已切换",
		zap.String("snapshot_id", snapshotID),
		zap.String("faculty_id", schedule.FacultyID),
		zap.Int("year", schedule.Year))

	resp := toScheduleResponseBase(schedule)
	resp.IsWorking = true
	return resp, nil
}

// ────────────────────── ListPromotionLogs ──────────────────────

func (s *scheduleService) ListPromotionLogs(ctx context.Context, facultyID string, year int) ([]dto.PromotionLogResponse, error) {
	logs, err := s.repo.Schedule.ListPromotionLogs(ctx, facultyID, year)
	if err != nil {
		s.logger.Error("查询切换记录失败",
			zap.String("faculty_id", facultyID), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	out := make([]dto.PromotionLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.PromotionLogResponse{
			ID:            l.LogID,
			FacultyID:     l.FacultyID,
			Year:          l.Year,
			OldSnapshotID: l.OldSnapshotID,
			NewSnapshotID: l.NewSnapshotID,
			OperatorID:    l.OperatorID,
			CreatedAt:     l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, nil
}

// ── 转换 ──

// workingSnapshotID 查询工作指针指向的快照 ID，无指针时返回空串
func (s *scheduleService) workingSnapshotID(ctx context.Context, facultyID string, year int) string {
	pointer, err := s.repo.Schedule.GetWorkingPointer(ctx, facultyID, year)
	if err != nil {
		return ""
	}
	return pointer.SnapshotID
}

func (s *scheduleService) toScheduleResponse(ctx context.Context, schedule *model.Schedule) *dto.ScheduleResponse {
	resp := toScheduleResponseBase(schedule)
	resp.IsWorking = s.workingSnapshotID(ctx, schedule.FacultyID, schedule.Year) == schedule.SnapshotID
	return resp
}

func toScheduleResponseBase(schedule *model.Schedule) *dto.ScheduleResponse {
	assignments := make([]dto.AssignmentResponse, 0, len(schedule.Assignments))
	for _, a := range schedule.Assignments {
		assignments = append(assignments, dto.AssignmentResponse{
			CourseID:     a.CourseID,
			InstructorID: a.InstructorID,
			TimeSlot:     a.TimeSlot,
		})
	}
	violations := make([]dto.ViolationResponse, 0, len(schedule.Violations))
	for _, v := range schedule.Violations {
		violations = append(violations, dto.ViolationResponse{
			RuleID:   v.RuleID,
			Message:  v.Message,
			Severity: v.Severity,
		})
	}

	return &dto.ScheduleResponse{
		SnapshotID:       schedule.SnapshotID,
		Year:             schedule.Year,
		FacultyID:        schedule.FacultyID,
		ParentSnapshotID: schedule.ParentSnapshotID,
		Assignments:      assignments,
		Validation: dto.ValidationResultResponse{
			Pass:       schedule.ValidationPass,
			Violations: violations,
		},
		CreatedAt: schedule.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toScheduleSummary(schedule *model.Schedule, workingID string) dto.ScheduleSummaryResponse {
	return dto.ScheduleSummaryResponse{
		SnapshotID:       schedule.SnapshotID,
		ParentSnapshotID: schedule.ParentSnapshotID,
		AssignmentCount:  len(schedule.Assignments),
		ValidationPass:   schedule.ValidationPass,
		IsWorking:        workingID != "" && workingID == schedule.SnapshotID,
		CreatedAt:        schedule.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
