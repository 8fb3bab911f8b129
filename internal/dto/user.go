package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Name      string `json:"name"     binding:"required,max=100"`
	Email     string `json:"email"    binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role"     binding:"omitempty,oneof=admin coordinator member"`
	FacultyID string `json:"faculty_id"`
}

// UpdateUserRequest 更新用户请求（字段可选）
type UpdateUserRequest struct {
	Name      *string `json:"name"       binding:"omitempty,max=100"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Role      *string `json:"role"       binding:"omitempty,oneof=admin coordinator member"`
	FacultyID *string `json:"faculty_id"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Faculty   *FacultyBrief    `json:"faculty,omitempty"`
	CreatedAt string           `json:"created_at,omitempty"`
}
