package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/response"
)

// InstructorHandler 教师模块 HTTP 处理器
type InstructorHandler struct {
	instructorSvc service.InstructorService
}

// NewInstructorHandler 创建 InstructorHandler
func NewInstructorHandler(instructorSvc service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructorSvc: instructorSvc}
}

// CreateInstructor 创建教师
// POST /api/v1/instructors
func (h *InstructorHandler) CreateInstructor(c *gin.Context) {
	var req dto.UpsertInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	instructor, err := h.instructorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.Created(c, instructor)
}

// ListInstructors 获取教师列表
// GET /api/v1/instructors?year=&role=&status=&faculty_id=
func (h *InstructorHandler) ListInstructors(c *gin.Context) {
	var req dto.InstructorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	instructors, err := h.instructorSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.OK(c, gin.H{"list": instructors})
}

// GetInstructor 获取教师详情
// GET /api/v1/instructors/:id?year=
func (h *InstructorHandler) GetInstructor(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	instructor, err := h.instructorSvc.GetByID(c.Request.Context(), id, year)
	if err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.OK(c, instructor)
}

// PatchInstructor 局部更新教师
// PATCH /api/v1/instructors/:id?year=
func (h *InstructorHandler) PatchInstructor(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	var req dto.PatchInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	instructor, err := h.instructorSvc.Patch(c.Request.Context(), id, year, &req, callerID)
	if err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.OK(c, instructor)
}

// ArchiveInstructor 归档教师（软删除）
// DELETE /api/v1/instructors/:id?year=
func (h *InstructorHandler) ArchiveInstructor(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.instructorSvc.Archive(c.Request.Context(), id, year, callerID); err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.NoContent(c)
}

// ListInstructorAssignments 获取教师在工作排课中的分配
// GET /api/v1/instructors/:id/assignments?year=
func (h *InstructorHandler) ListInstructorAssignments(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	assignments, err := h.instructorSvc.ListAssignments(c.Request.Context(), id, year)
	if err != nil {
		h.handleInstructorError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

func (h *InstructorHandler) handleInstructorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInstructorNotFound):
		response.NotFound(c, 15001, "教师不存在")
	case errors.Is(err, service.ErrInstructorExists):
		response.Conflict(c, 15002, "该学年已存在同标识符教师")
	case errors.Is(err, service.ErrInstructorRoleInvalid):
		response.BadRequest(c, 15003, "教师角色取值非法")
	case errors.Is(err, service.ErrInstructorArchived):
		response.Conflict(c, 15004, "教师已归档，不可修改")
	case errors.Is(err, service.ErrInstructorInWorkingSched):
		response.Conflict(c, 15005, "教师被工作排课引用，无法归档")
	case errors.Is(err, service.ErrFacultyNotFound):
		response.UnprocessableEntity(c, 13001, "院系不存在")
	default:
		response.InternalError(c)
	}
}
