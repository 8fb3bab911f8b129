package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 校验模块业务错误 ──

// ErrUnknownReference 分配引用了不存在或已归档的实体
// 这是结构性错误（快速失败），与规则违规（正常输出）严格区分
var ErrUnknownReference = errors.New("分配引用了不存在或已归档的实体")

// ValidationResult 校验结果：pass 当且仅当违规列表为空
type ValidationResult struct {
	Pass       bool
	Violations []model.Violation
}

// ValidationService 分配集合校验接口
// 相同 (year, 分配集合, 规则集合) 必然得到相同结果：
// 求值无隐藏状态，违规列表按 (rule_id, message) 排序
type ValidationService interface {
	Validate(ctx context.Context, year int, assignments []model.Assignment) (*ValidationResult, error)
}

type validationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewValidationService 创建 ValidationService 实例
func NewValidationService(repo *repository.Repository, logger *zap.Logger) ValidationService {
	return &validationService{repo: repo, logger: logger}
}

func (s *validationService) Validate(ctx context.Context, year int, assignments []model.Assignment) (*ValidationResult, error) {
	ec, err := s.resolveReferences(ctx, year, assignments)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.Rule.ListEnabled(ctx, year)
	if err != nil {
		s.logger.Error("加载规则失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	// 规则互不依赖，并行求值；ctx 取消时整组退出
	var (
		mu         sync.Mutex
		violations []model.Violation
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := range rules {
		rule := &rules[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found := evaluateRule(rule, ec)
			if len(found) > 0 {
				mu.Lock()
				violations = append(violations, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 并行聚合后排序，保证结果确定
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].RuleID != violations[j].RuleID {
			return violations[i].RuleID < violations[j].RuleID
		}
		return violations[i].Message < violations[j].Message
	})
	if violations == nil {
		violations = []model.Violation{}
	}

	return &ValidationResult{
		Pass:       len(violations) == 0,
		Violations: violations,
	}, nil
}

// resolveReferences 解析分配引用的全部实体
// 任一标识符缺失或已归档即快速失败，不进入规则求值
func (s *validationService) resolveReferences(ctx context.Context, year int, assignments []model.Assignment) (*evalContext, error) {
	courseIDs := map[string]struct{}{}
	instructorIDs := map[string]struct{}{}
	for _, a := range assignments {
		courseIDs[a.CourseID] = struct{}{}
		instructorIDs[a.InstructorID] = struct{}{}
	}

	courses, err := s.repo.Course.ListByIDs(ctx, year, setToSlice(courseIDs))
	if err != nil {
		s.logger.Error("解析课程引用失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	instructors, err := s.repo.Instructor.ListByIDs(ctx, year, setToSlice(instructorIDs))
	if err != nil {
		s.logger.Error("解析教师引用失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	courseMap := make(map[string]*model.Course, len(courses))
	for i := range courses {
		if courses[i].Status == model.StatusActive {
			courseMap[courses[i].CourseID] = &courses[i]
		}
	}
	instructorMap := make(map[string]*model.Instructor, len(instructors))
	for i := range instructors {
		if instructors[i].Status == model.StatusActive {
			instructorMap[instructors[i].InstructorID] = &instructors[i]
		}
	}

	for _, id := range setToSlice(courseIDs) {
		if _, ok := courseMap[id]; !ok {
			return nil, fmt.Errorf("%w: 课程 %s (%d)", ErrUnknownReference, id, year)
		}
	}
	for _, id := range setToSlice(instructorIDs) {
		if _, ok := instructorMap[id]; !ok {
			return nil, fmt.Errorf("%w: 教师 %s (%d)", ErrUnknownReference, id, year)
		}
	}

	return &evalContext{
		assignments: assignments,
		courses:     courseMap,
		instructors: instructorMap,
	}, nil
}

// setToSlice 按字典序导出集合元素（错误消息顺序确定）
func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
