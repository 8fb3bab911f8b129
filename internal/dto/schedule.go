package dto

// ── 排课模块 DTO ──

// AssignmentRequest 单条排课分配
type AssignmentRequest struct {
	CourseID     string `json:"course_id"     binding:"required"`
	InstructorID string `json:"instructor_id" binding:"required"`
	TimeSlot     string `json:"time_slot"     binding:"required"`
}

// ProposeScheduleRequest 提交新快照请求
// ParentSnapshotID 为空表示该 (faculty, year) 的根快照
type ProposeScheduleRequest struct {
	Year             int                 `json:"year"       binding:"required,min=2000,max=2100"`
	FacultyID        string              `json:"faculty_id" binding:"required"`
	ParentSnapshotID *string             `json:"parent_snapshot_id"`
	Assignments      []AssignmentRequest `json:"assignments"`
}

// ViolationResponse 单条规则违规
type ViolationResponse struct {
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ValidationResultResponse 校验结果
// 违规是正常输出而非错误：pass=false 的快照仍会被保存
type ValidationResultResponse struct {
	Pass       bool                `json:"pass"`
	Violations []ViolationResponse `json:"violations"`
}

// AssignmentResponse 快照内的单条分配
type AssignmentResponse struct {
	CourseID     string `json:"course_id"`
	InstructorID string `json:"instructor_id"`
	TimeSlot     string `json:"time_slot"`
}

// ScheduleResponse 快照完整响应
type ScheduleResponse struct {
	SnapshotID       string                   `json:"snapshot_id"`
	Year             int                      `json:"year"`
	FacultyID        string                   `json:"faculty_id"`
	ParentSnapshotID *string                  `json:"parent_snapshot_id,omitempty"`
	Assignments      []AssignmentResponse     `json:"assignments"`
	Validation       ValidationResultResponse `json:"validation"`
	IsWorking        bool                     `json:"is_working"`
	CreatedAt        string                   `json:"created_at"`
}

// ScheduleSummaryResponse 快照摘要（列表/谱系视图）
type ScheduleSummaryResponse struct {
	SnapshotID       string  `json:"snapshot_id"`
	ParentSnapshotID *string `json:"parent_snapshot_id,omitempty"`
	AssignmentCount  int     `json:"assignment_count"`
	ValidationPass   bool    `json:"validation_pass"`
	IsWorking        bool    `json:"is_working"`
	CreatedAt        string  `json:"created_at"`
}

// ScheduleListRequest 快照列表查询参数
type ScheduleListRequest struct {
	FacultyID string `form:"faculty_id" binding:"required"`
	Year      int    `form:"year"       binding:"required,min=2000,max=2100"`
}

// PromotionLogResponse 工作指针切换审计记录
type PromotionLogResponse struct {
	ID            string  `json:"id"`
	FacultyID     string  `json:"faculty_id"`
	Year          int     `json:"year"`
	OldSnapshotID *string `json:"old_snapshot_id,omitempty"`
	NewSnapshotID string  `json:"new_snapshot_id"`
	OperatorID    *string `json:"operator_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
