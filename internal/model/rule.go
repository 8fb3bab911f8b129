package model

// 规则作用域
const (
	RuleScopeCourse     = "course"
	RuleScopeInstructor = "instructor"
)

// 规则类型（封闭集合：按作用域划分，不支持自定义扩展）
const (
	// course 作用域
	RuleTypeRequireRole       = "require_role"       // 课程要求 ≥N 名指定角色的教师
	RuleTypeTimeslotExclusive = "timeslot_exclusive" // 指定课程之间不得共享时段
	// instructor 作用域
	RuleTypeMaxCoursesPerTerm = "max_courses_per_term" // 教师每学期最多授课数
	RuleTypeNoDoubleBooking   = "no_double_booking"    // 教师同一时段不得重复授课
)

// 违规级别
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// RuleTypesByScope 各作用域允许的规则类型
var RuleTypesByScope = map[string][]string{
	RuleScopeCourse:     {RuleTypeRequireRole, RuleTypeTimeslotExclusive},
	RuleScopeInstructor: {RuleTypeMaxCoursesPerTerm, RuleTypeNoDoubleBooking},
}

// ValidRuleType 判断规则类型是否属于指定作用域
func ValidRuleType(scope, ruleType string) bool {
	for _, t := range RuleTypesByScope[scope] {
		if t == ruleType {
			return true
		}
	}
	return false
}

// Rule 约束规则表 — 对应 rules
// 规则按学年隔离，绝不跨年生效；每条规则只有一个求值作用域，
// 求值函数无副作用，规则之间互不依赖（可并行求值）
type Rule struct {
	RuleID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	Year        int     `gorm:"not null;index:idx_rules_year_scope"            json:"year"`
	Scope       string  `gorm:"type:varchar(20);not null;index:idx_rules_year_scope" json:"scope"` // course | instructor
	RuleType    string  `gorm:"type:varchar(40);not null"                      json:"rule_type"`
	Params      JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"params"`
	Severity    string  `gorm:"type:varchar(20);not null;default:'error'"      json:"severity"`
	Description string  `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	IsEnabled   bool    `gorm:"not null;default:true"                          json:"is_enabled"`
	VersionedModel
}

// TableName 指定表名
func (Rule) TableName() string { return "rules" }
