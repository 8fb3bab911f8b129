package dto

// ── 课程模块 DTO ──

// UpsertCourseRequest 创建/更新课程请求
type UpsertCourseRequest struct {
	CourseID string `json:"course_id" binding:"required,max=32"`
	Year     int    `json:"year"      binding:"required,min=2000,max=2100"`
	Title    string `json:"title"     binding:"required,max=200"`
	Term     string `json:"term"      binding:"required"`
}

// PatchCourseRequest 局部更新课程请求
type PatchCourseRequest struct {
	Title *string `json:"title" binding:"omitempty,max=200"`
	Term  *string `json:"term"`
}

// CourseListRequest 课程列表过滤参数
type CourseListRequest struct {
	Year   int    `form:"year"   binding:"required,min=2000,max=2100"`
	Term   string `form:"term"   binding:"omitempty"`
	Status string `form:"status" binding:"omitempty,oneof=active archived"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	CourseID  string `json:"course_id"`
	Year      int    `json:"year"`
	Title     string `json:"title"`
	Term      string `json:"term"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
