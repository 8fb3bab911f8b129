package model

import "time"

// Faculty 院系表 — 对应 faculties
type Faculty struct {
	FacultyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"faculty_id"`
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	VersionedModel

	// 关联
	Members []FacultyMember `gorm:"foreignKey:FacultyID" json:"members,omitempty"`
}

// TableName 指定表名
func (Faculty) TableName() string { return "faculties" }

// FacultyMember 院系成员表 — 对应 faculty_members
type FacultyMember struct {
	FacultyID string    `gorm:"type:uuid;primaryKey" json:"faculty_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (FacultyMember) TableName() string { return "faculty_members" }
