package dto

// ── 规则模块 DTO ──

// CreateRuleRequest 创建规则请求
// 作用域由路由决定（/rules/courses → course，/rules/instructors → instructor）
type CreateRuleRequest struct {
	RuleType    string                 `json:"rule_type"   binding:"required"`
	Params      map[string]interface{} `json:"params"      binding:"required"`
	Severity    string                 `json:"severity"    binding:"omitempty,oneof=error warning"`
	Description string                 `json:"description" binding:"omitempty,max=500"`
}

// UpdateRuleRequest 更新规则请求（字段可选）
type UpdateRuleRequest struct {
	Params      map[string]interface{} `json:"params"`
	Severity    *string                `json:"severity"    binding:"omitempty,oneof=error warning"`
	Description *string                `json:"description" binding:"omitempty,max=500"`
	IsEnabled   *bool                  `json:"is_enabled"`
}

// RuleResponse 规则信息响应
type RuleResponse struct {
	ID          string                 `json:"id"`
	Year        int                    `json:"year"`
	Scope       string                 `json:"scope"`
	RuleType    string                 `json:"rule_type"`
	Params      map[string]interface{} `json:"params"`
	Severity    string                 `json:"severity"`
	Description string                 `json:"description,omitempty"`
	IsEnabled   bool                   `json:"is_enabled"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}
