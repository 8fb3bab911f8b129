package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

// RuleRepository 约束规则数据访问接口
// 所有查询均以学年为边界：规则绝不跨年生效
type RuleRepository interface {
	Create(ctx context.Context, rule *model.Rule) error
	GetByID(ctx context.Context, year int, id string) (*model.Rule, error)
	// List scope 为空时返回该学年全部规则
	List(ctx context.Context, year int, scope string) ([]model.Rule, error)
	// ListEnabled 返回该学年所有启用规则（校验器用）
	ListEnabled(ctx context.Context, year int) ([]model.Rule, error)
	Update(ctx context.Context, rule *model.Rule) error
	Delete(ctx context.Context, year int, id string) error
}

type ruleRepo struct {
	db *gorm.DB
}

// NewRuleRepo 创建 RuleRepository 实例
func NewRuleRepo(db *gorm.DB) RuleRepository {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) Create(ctx context.Context, rule *model.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepo) GetByID(ctx context.Context, year int, id string) (*model.Rule, error) {
	var rule model.Rule
	err := r.db.WithContext(ctx).
		Where("rule_id = ? AND year = ?", id, year).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepo) List(ctx context.Context, year int, scope string) ([]model.Rule, error) {
	db := r.db.WithContext(ctx).Where("year = ?", year)
	if scope != "" {
		db = db.Where("scope = ?", scope)
	}

	var rules []model.Rule
	err := db.Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) ListEnabled(ctx context.Context, year int) ([]model.Rule, error) {
	var rules []model.Rule
	err := r.db.WithContext(ctx).
		Where("year = ? AND is_enabled = ?", year, true).
		Order("rule_id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) Update(ctx context.Context, rule *model.Rule) error {
	oldVersion := rule.Version
	result := r.db.WithContext(ctx).
		Model(rule).
		Where("rule_id = ? AND year = ? AND version = ?", rule.RuleID, rule.Year, oldVersion).
		Updates(map[string]interface{}{
			"params":      rule.Params,
			"severity":    rule.Severity,
			"description": rule.Description,
			"is_enabled":  rule.IsEnabled,
			"updated_by":  rule.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rule.Version = oldVersion + 1
	return nil
}

func (r *ruleRepo) Delete(ctx context.Context, year int, id string) error {
	result := r.db.WithContext(ctx).
		Where("rule_id = ? AND year = ?", id, year).
		Delete(&model.Rule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
