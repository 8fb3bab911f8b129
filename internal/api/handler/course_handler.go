package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.UpsertCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// ListCourses 获取课程列表
// GET /api/v1/courses?year=&term=&status=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id?year=
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id, year)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// PatchCourse 局部更新课程
// PATCH /api/v1/courses/:id?year=
func (h *CourseHandler) PatchCourse(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	var req dto.PatchCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Patch(c.Request.Context(), id, year, &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// ArchiveCourse 归档课程（软删除）
// DELETE /api/v1/courses/:id?year=
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	id := c.Param("id")
	year, ok := ParseYearQuery(c, "year")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Archive(c.Request.Context(), id, year, callerID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14001, "课程不存在")
	case errors.Is(err, service.ErrCourseExists):
		response.Conflict(c, 14002, "该学年已存在同标识符课程")
	case errors.Is(err, service.ErrCourseTermInvalid):
		response.BadRequest(c, 14003, "学期取值非法")
	case errors.Is(err, service.ErrCourseArchived):
		response.Conflict(c, 14004, "课程已归档，不可修改")
	case errors.Is(err, service.ErrCourseInWorkingSched):
		response.Conflict(c, 14005, "课程被工作排课引用，无法归档")
	default:
		response.InternalError(c)
	}
}
