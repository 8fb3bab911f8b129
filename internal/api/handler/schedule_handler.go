package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/service"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
	"github.com/chsky1600/qicas/pkg/response"
)

// ScheduleHandler 排课快照模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ProposeSchedule 提交新快照
// POST /api/v1/schedules
// 校验失败仍返回 201：创建成功，校验结果是信息性输出
func (h *ScheduleHandler) ProposeSchedule(c *gin.Context) {
	var req dto.ProposeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Propose(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// GetWorkingSchedule 获取工作排课
// GET /api/v1/schedules/working?faculty_id=&year=
func (h *ScheduleHandler) GetWorkingSchedule(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedule, err := h.scheduleSvc.GetWorking(c.Request.Context(), req.FacultyID, req.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSchedules 获取快照列表
// GET /api/v1/schedules?faculty_id=&year=
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedules, err := h.scheduleSvc.ListSnapshots(c.Request.Context(), req.FacultyID, req.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// GetScheduleLineage 获取快照谱系（根 → 最新）
// GET /api/v1/schedules/lineage?faculty_id=&year=
func (h *ScheduleHandler) GetScheduleLineage(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	lineage, err := h.scheduleSvc.Lineage(c.Request.Context(), req.FacultyID, req.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": lineage})
}

// GetSchedule 获取快照详情
// GET /api/v1/schedules/:snapshot_id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	snapshotID := c.Param("snapshot_id")
	if snapshotID == "" {
		response.BadRequest(c, 10001, "快照ID不能为空")
		return
	}

	schedule, err := h.scheduleSvc.GetSnapshot(c.Request.Context(), snapshotID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// PromoteSchedule 将快照提升为工作排课
// PUT /api/v1/schedules/:snapshot_id
func (h *ScheduleHandler) PromoteSchedule(c *gin.Context) {
	snapshotID := c.Param("snapshot_id")
	if snapshotID == "" {
		response.BadRequest(c, 10001, "快照ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Promote(c.Request.Context(), snapshotID, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListPromotionLogs 获取工作指针切换记录
// GET /api/v1/schedules/promotions?faculty_id=&year=
func (h *ScheduleHandler) ListPromotionLogs(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, err := h.scheduleSvc.ListPromotionLogs(c.Request.Context(), req.FacultyID, req.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 17001, "排课快照不存在")
	case errors.Is(err, service.ErrWorkingNotFound):
		response.NotFound(c, 17002, "该院系学年尚无工作排课")
	case errors.Is(err, service.ErrParentNotFound):
		response.UnprocessableEntity(c, 17003, "父快照不存在或不属于该院系学年")
	case errors.Is(err, service.ErrValidationRequired):
		response.Conflict(c, 17004, "快照未通过校验，不能设为工作排课")
	case errors.Is(err, service.ErrUnknownReference):
		response.UnprocessableEntity(c, 17005, "分配引用了不存在或已归档的实体")
	case errors.Is(err, service.ErrFacultyNotFound):
		response.UnprocessableEntity(c, 13001, "院系不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
