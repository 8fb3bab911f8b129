package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 规则模块业务错误 ──

var (
	ErrRuleNotFound      = errors.New("规则不存在")
	ErrRuleScopeInvalid  = errors.New("规则作用域非法，允许: course / instructor")
	ErrRuleTypeInvalid   = errors.New("规则类型不属于该作用域")
	ErrRuleParamsInvalid = errors.New("规则参数非法")
)

// RuleService 约束规则业务接口
// 规则按 (year, scope) 管理，类型集合封闭、不支持自定义表达式
type RuleService interface {
	Create(ctx context.Context, year int, scope string, req *dto.CreateRuleRequest, callerID string) (*dto.RuleResponse, error)
	GetByID(ctx context.Context, year int, id string) (*dto.RuleResponse, error)
	List(ctx context.Context, year int, scope string) ([]dto.RuleResponse, error)
	Update(ctx context.Context, year int, id string, req *dto.UpdateRuleRequest, callerID string) (*dto.RuleResponse, error)
	Delete(ctx context.Context, year int, id string) error
}

type ruleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRuleService 创建 RuleService 实例
func NewRuleService(repo *repository.Repository, logger *zap.Logger) RuleService {
	return &ruleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *ruleService) Create(ctx context.Context, year int, scope string, req *dto.CreateRuleRequest, callerID string) (*dto.RuleResponse, error) {
	if scope != model.RuleScopeCourse && scope != model.RuleScopeInstructor {
		return nil, ErrRuleScopeInvalid
	}
	if !model.ValidRuleType(scope, req.RuleType) {
		return nil, ErrRuleTypeInvalid
	}
	if err := validateRuleParams(req.RuleType, model.JSONMap(req.Params)); err != nil {
		return nil, err
	}

	severity := req.Severity
	if severity == "" {
		severity = model.SeverityError
	}

	rule := &model.Rule{
		Year:        year,
		Scope:       scope,
		RuleType:    req.RuleType,
		Params:      model.JSONMap(req.Params),
		Severity:    severity,
		Description: req.Description,
		IsEnabled:   true,
	}
	rule.CreatedBy = &callerID
	rule.UpdatedBy = &callerID

	if err := s.repo.Rule.Create(ctx, rule); err != nil {
		s.logger.Error("创建规则失败", zap.Int("year", year), zap.String("scope", scope), zap.Error(err))
		return nil, err
	}

	return toRuleResponse(rule), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *ruleService) GetByID(ctx context.Context, year int, id string) (*dto.RuleResponse, error) {
	rule, err := s.repo.Rule.GetByID(ctx, year, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		s.logger.Error("查询规则失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// ────────────────────── List ──────────────────────

func (s *ruleService) List(ctx context.Context, year int, scope string) ([]dto.RuleResponse, error) {
	if scope != "" && scope != model.RuleScopeCourse && scope != model.RuleScopeInstructor {
		return nil, ErrRuleScopeInvalid
	}

	rules, err := s.repo.Rule.List(ctx, year, scope)
	if err != nil {
		s.logger.Error("查询规则列表失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	out := make([]dto.RuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *toRuleResponse(&rules[i]))
	}
	return out, nil
}

// ────────────────────── Update ──────────────────────

func (s *ruleService) Update(ctx context.Context, year int, id string, req *dto.UpdateRuleRequest, callerID string) (*dto.RuleResponse, error) {
	rule, err := s.repo.Rule.GetByID(ctx, year, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if req.Params != nil {
		if err := validateRuleParams(rule.RuleType, model.JSONMap(req.Params)); err != nil {
			return nil, err
		}
		rule.Params = model.JSONMap(req.Params)
	}
	if req.Severity != nil {
		rule.Severity = *req.Severity
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.IsEnabled != nil {
		rule.IsEnabled = *req.IsEnabled
	}
	rule.UpdatedBy = &callerID

	if err := s.repo.Rule.Update(ctx, rule); err != nil {
		s.logger.Error("更新规则失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toRuleResponse(rule), nil
}

// ────────────────────── Delete ──────────────────────

func (s *ruleService) Delete(ctx context.Context, year int, id string) error {
	if err := s.repo.Rule.Delete(ctx, year, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		s.logger.Error("删除规则失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 参数校验 ──

// validateRuleParams 按规则类型校验参数形态，拒绝无法求值的规则进入存储
func validateRuleParams(ruleType string, params model.JSONMap) error {
	switch ruleType {
	case model.RuleTypeRequireRole:
		if params.GetString("course_id") == "" {
			return fmt.Errorf("%w: require_role 缺少 course_id", ErrRuleParamsInvalid)
		}
		if !model.ValidInstructorRole(params.GetString("role")) {
			return fmt.Errorf("%w: require_role 的 role 非法", ErrRuleParamsInvalid)
		}
		if n, ok := params.GetInt("min_count"); ok && n < 1 {
			return fmt.Errorf("%w: min_count 必须 ≥ 1", ErrRuleParamsInvalid)
		}
	case model.RuleTypeTimeslotExclusive:
		if len(params.GetStringSlice("course_ids")) < 2 {
			return fmt.Errorf("%w: timeslot_exclusive 需要至少两个 course_ids", ErrRuleParamsInvalid)
		}
	case model.RuleTypeMaxCoursesPerTerm:
		n, ok := params.GetInt("max")
		if !ok || n < 1 {
			return fmt.Errorf("%w: max_courses_per_term 的 max 必须 ≥ 1", ErrRuleParamsInvalid)
		}
	case model.RuleTypeNoDoubleBooking:
		// 无参数
	default:
		return ErrRuleTypeInvalid
	}
	return nil
}

// ── 转换 ──

func toRuleResponse(r *model.Rule) *dto.RuleResponse {
	return &dto.RuleResponse{
		ID:          r.RuleID,
		Year:        r.Year,
		Scope:       r.Scope,
		RuleType:    r.RuleType,
		Params:      map[string]interface{}(r.Params),
		Severity:    r.Severity,
		Description: r.Description,
		IsEnabled:   r.IsEnabled,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
