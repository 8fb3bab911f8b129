package dto

// ── 院系模块 DTO ──

// CreateFacultyRequest 创建院系请求
type CreateFacultyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// FacultyBrief 院系简要信息
type FacultyBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FacultyMemberResponse 院系成员信息
type FacultyMemberResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FacultyResponse 院系详细信息响应
type FacultyResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Members   []FacultyMemberResponse `json:"members,omitempty"`
	CreatedAt string                  `json:"created_at"`
	UpdatedAt string                  `json:"updated_at"`
}
