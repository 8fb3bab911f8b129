package model

// 课程学期
const (
	TermFall     = "fall"
	TermWinter   = "winter"
	TermFullYear = "full_year"
)

// 实体状态
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// ValidTerm 判断学期枚举是否合法
func ValidTerm(term string) bool {
	switch term {
	case TermFall, TermWinter, TermFullYear:
		return true
	}
	return false
}

// Course 课程表 — 对应 courses
// 标识符在学年内唯一，(course_id, year) 为联合主键；
// 归档仅翻转 status，被快照引用的课程永不物理删除
type Course struct {
	CourseID string `gorm:"type:varchar(32);primaryKey" json:"course_id"`
	Year     int    `gorm:"primaryKey"                  json:"year"`
	Title    string `gorm:"type:varchar(200);not null"  json:"title"`
	Term     string `gorm:"type:varchar(20);not null"   json:"term"` // fall | winter | full_year
	Status   string `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // active | archived
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
