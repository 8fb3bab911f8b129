package model

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Assignment 排课分配：(课程, 教师, 时段) 三元组
// 不单独持久化，仅存在于快照的分配集合中
type Assignment struct {
	CourseID     string `json:"course_id"`
	InstructorID string `json:"instructor_id"`
	TimeSlot     string `json:"time_slot"`
}

// AssignmentList 对应 JSONB 数组列
type AssignmentList []Assignment

// Scan 解析数据库 JSONB
func (l *AssignmentList) Scan(src interface{}) error {
	return scanJSONList(src, l, "AssignmentList")
}

// Value 序列化为 JSONB 文本
func (l AssignmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Violation 规则违规项（校验的正常输出，不是错误）
type Violation struct {
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ViolationList 对应 JSONB 数组列
type ViolationList []Violation

// Scan 解析数据库 JSONB
func (l *ViolationList) Scan(src interface{}) error {
	return scanJSONList(src, l, "ViolationList")
}

// Value 序列化为 JSONB 文本
func (l ViolationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSONList(src, dst interface{}, name string) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("%s.Scan: unsupported type %T", name, src)
	}
	return json.Unmarshal(b, dst)
}

// Schedule 排课快照表 — 对应 schedules
// 不可变值对象：创建后分配集合与父指针永不修改，
// 任何编辑都产生以被编辑快照为父的新快照；只增不删（审计链）
type Schedule struct {
	SnapshotID       string         `gorm:"type:char(64);primaryKey"         json:"snapshot_id"`
	Year             int            `gorm:"not null"                         json:"year"`
	FacultyID        string         `gorm:"type:uuid;not null"               json:"faculty_id"`
	ParentSnapshotID *string        `gorm:"type:char(64)"                    json:"parent_snapshot_id,omitempty"`
	Assignments      AssignmentList `gorm:"type:jsonb;not null;default:'[]'" json:"assignments"`
	ValidationPass   bool           `gorm:"not null;default:false"           json:"validation_pass"`
	Violations       ViolationList  `gorm:"type:jsonb;not null;default:'[]'" json:"violations"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy        *string        `gorm:"type:uuid"                        json:"created_by,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// WorkingSchedule 工作排课指针表 — 对应 working_schedules
// 每 (faculty, year) 至多一条；切换通过乐观锁版本号保证原子性
type WorkingSchedule struct {
	FacultyID  string    `gorm:"type:uuid;primaryKey"               json:"faculty_id"`
	Year       int       `gorm:"primaryKey"                         json:"year"`
	SnapshotID string    `gorm:"type:char(64);not null"             json:"snapshot_id"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy  *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
	Version    int       `gorm:"not null;default:1"                 json:"version"`
}

// TableName 指定表名
func (WorkingSchedule) TableName() string { return "working_schedules" }

// PromotionLog 工作指针切换审计表 — 对应 promotion_logs
type PromotionLog struct {
	LogID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	FacultyID     string    `gorm:"type:uuid;not null"                 json:"faculty_id"`
	Year          int       `gorm:"not null"                           json:"year"`
	OldSnapshotID *string   `gorm:"type:char(64)"                      json:"old_snapshot_id,omitempty"`
	NewSnapshotID string    `gorm:"type:char(64);not null"             json:"new_snapshot_id"`
	OperatorID    *string   `gorm:"type:uuid"                          json:"operator_id,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (PromotionLog) TableName() string { return "promotion_logs" }

// ── 内容寻址 ──

// snapshotHashVersion 规范化序列格式版本，格式变更时递增
const snapshotHashVersion = "v1"

// ComputeSnapshotID 由 (year, faculty, parent, 分配集合) 的规范化序列计算快照 ID。
// 分配按 (course_id, instructor_id, time_slot) 排序后拼接，
// 因此相同父快照下的相同分配集合必然得到相同 ID（幂等创建的基础）。
func ComputeSnapshotID(year int, facultyID string, parentID *string, assignments []Assignment) string {
	sorted := make([]Assignment, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CourseID != sorted[j].CourseID {
			return sorted[i].CourseID < sorted[j].CourseID
		}
		if sorted[i].InstructorID != sorted[j].InstructorID {
			return sorted[i].InstructorID < sorted[j].InstructorID
		}
		return sorted[i].TimeSlot < sorted[j].TimeSlot
	})

	parent := ""
	if parentID != nil {
		parent = *parentID
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%d|%s|%s", snapshotHashVersion, year, facultyID, parent)
	for _, a := range sorted {
		fmt.Fprintf(&sb, "|%s\x1f%s\x1f%s", a.CourseID, a.InstructorID, a.TimeSlot)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
