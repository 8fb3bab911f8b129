package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/response"
)

// FacultyHandler 院系模块 HTTP 处理器
type FacultyHandler struct {
	facultySvc service.FacultyService
}

// NewFacultyHandler 创建 FacultyHandler
func NewFacultyHandler(facultySvc service.FacultyService) *FacultyHandler {
	return &FacultyHandler{facultySvc: facultySvc}
}

// CreateFaculty 创建院系
// POST /api/v1/faculty
func (h *FacultyHandler) CreateFaculty(c *gin.Context) {
	var req dto.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	faculty, err := h.facultySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleFacultyError(c, err)
		return
	}

	response.Created(c, faculty)
}

// ListFaculties 获取院系列表
// GET /api/v1/faculty
func (h *FacultyHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.facultySvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": faculties})
}

// GetFaculty 获取院系详情（含成员）
// GET /api/v1/faculty/:id
func (h *FacultyHandler) GetFaculty(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "院系ID不能为空")
		return
	}

	faculty, err := h.facultySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFacultyError(c, err)
		return
	}

	response.OK(c, faculty)
}

// DeleteFaculty 删除院系
// DELETE /api/v1/faculty/:id
func (h *FacultyHandler) DeleteFaculty(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "院系ID不能为空")
		return
	}

	if err := h.facultySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleFacultyError(c, err)
		return
	}

	response.NoContent(c)
}

// AddMember 添加院系成员
// POST /api/v1/faculty/:id/members/:user_id
func (h *FacultyHandler) AddMember(c *gin.Context) {
	facultyID, userID := c.Param("id"), c.Param("user_id")
	if facultyID == "" || userID == "" {
		response.BadRequest(c, 10001, "院系ID与用户ID不能为空")
		return
	}

	if err := h.facultySvc.AddMember(c.Request.Context(), facultyID, userID); err != nil {
		h.handleFacultyError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveMember 移除院系成员
// DELETE /api/v1/faculty/:id/members/:user_id
func (h *FacultyHandler) RemoveMember(c *gin.Context) {
	facultyID, userID := c.Param("id"), c.Param("user_id")
	if facultyID == "" || userID == "" {
		response.BadRequest(c, 10001, "院系ID与用户ID不能为空")
		return
	}

	if err := h.facultySvc.RemoveMember(c.Request.Context(), facultyID, userID); err != nil {
		h.handleFacultyError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *FacultyHandler) handleFacultyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFacultyNotFound):
		response.NotFound(c, 13001, "院系不存在")
	case errors.Is(err, service.ErrFacultyNameExists):
		response.Conflict(c, 13002, "院系名称已存在")
	case errors.Is(err, service.ErrFacultyHasSnapshots):
		response.Conflict(c, 13003, "院系存在排课快照，无法删除")
	case errors.Is(err, service.ErrUserNotFound):
		response.UnprocessableEntity(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, 13004, "院系成员不存在")
	default:
		response.InternalError(c)
	}
}
