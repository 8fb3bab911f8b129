package model

// 教师角色
const (
	RoleLecturer  = "lecturer"
	RoleProfessor = "professor"
	RoleTA        = "ta"
)

// ValidInstructorRole 判断教师角色枚举是否合法
func ValidInstructorRole(role string) bool {
	switch role {
	case RoleLecturer, RoleProfessor, RoleTA:
		return true
	}
	return false
}

// Instructor 授课教师表 — 对应 instructors
// 与 Course 相同的生命周期约束：归档即软删除
type Instructor struct {
	InstructorID string `gorm:"type:varchar(32);primaryKey" json:"instructor_id"`
	Year         int    `gorm:"primaryKey"                  json:"year"`
	Name         string `gorm:"type:varchar(100);not null"  json:"name"`
	Role         string `gorm:"type:varchar(20);not null"   json:"role"` // lecturer | professor | ta
	FacultyID    *string `gorm:"type:uuid"                  json:"faculty_id,omitempty"` // 可空外键，空值必须写为 NULL
	Status       string `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // active | archived
	VersionedModel

	// 关联
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (Instructor) TableName() string { return "instructors" }
