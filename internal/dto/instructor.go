package dto

// ── 教师模块 DTO ──

// UpsertInstructorRequest 创建/更新教师请求
type UpsertInstructorRequest struct {
	InstructorID string `json:"instructor_id" binding:"required,max=32"`
	Year         int    `json:"year"          binding:"required,min=2000,max=2100"`
	Name         string `json:"name"          binding:"required,max=100"`
	Role         string `json:"role"          binding:"required"`
	FacultyID    string `json:"faculty_id"`
}

// PatchInstructorRequest 局部更新教师请求
type PatchInstructorRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Role      *string `json:"role"`
	FacultyID *string `json:"faculty_id"`
}

// InstructorListRequest 教师列表过滤参数
type InstructorListRequest struct {
	Year      int    `form:"year"       binding:"required,min=2000,max=2100"`
	Role      string `form:"role"       binding:"omitempty"`
	Status    string `form:"status"     binding:"omitempty,oneof=active archived"`
	FacultyID string `form:"faculty_id" binding:"omitempty"`
}

// InstructorResponse 教师信息响应
type InstructorResponse struct {
	InstructorID string        `json:"instructor_id"`
	Year         int           `json:"year"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	Status       string        `json:"status"`
	Faculty      *FacultyBrief `json:"faculty,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// InstructorAssignmentResponse 教师在工作排课中的分配
type InstructorAssignmentResponse struct {
	FacultyID  string `json:"faculty_id"`
	Year       int    `json:"year"`
	SnapshotID string `json:"snapshot_id"`
	CourseID   string `json:"course_id"`
	TimeSlot   string `json:"time_slot"`
}
