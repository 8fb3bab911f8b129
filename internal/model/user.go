package model

// 用户角色
const (
	UserRoleAdmin       = "admin"
	UserRoleCoordinator = "coordinator"
	UserRoleMember      = "member"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"` // admin | coordinator | member
	FacultyID    *string `gorm:"type:uuid"                                     json:"faculty_id,omitempty"` // 可空外键，空值必须写为 NULL
	VersionedModel

	// 关联
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
