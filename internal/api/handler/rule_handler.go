package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/response"
)

// RuleHandler 约束规则模块 HTTP 处理器
// 作用域由路由前缀决定：
//
//	/year/:year/rules/courses     → course 作用域
//	/year/:year/rules/instructors → instructor 作用域
type RuleHandler struct {
	ruleSvc service.RuleService
}

// NewRuleHandler 创建 RuleHandler
func NewRuleHandler(ruleSvc service.RuleService) *RuleHandler {
	return &RuleHandler{ruleSvc: ruleSvc}
}

// CreateCourseRule 创建课程规则
// POST /api/v1/year/:year/rules/courses
func (h *RuleHandler) CreateCourseRule(c *gin.Context) {
	h.createRule(c, model.RuleScopeCourse)
}

// CreateInstructorRule 创建教师规则
// POST /api/v1/year/:year/rules/instructors
func (h *RuleHandler) CreateInstructorRule(c *gin.Context) {
	h.createRule(c, model.RuleScopeInstructor)
}

func (h *RuleHandler) createRule(c *gin.Context, scope string) {
	year, ok := ParseYearParam(c, "year")
	if !ok {
		return
	}

	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rule, err := h.ruleSvc.Create(c.Request.Context(), year, scope, &req, callerID)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.Created(c, rule)
}

// ListCourseRules 获取课程规则列表
// GET /api/v1/year/:year/rules/courses
func (h *RuleHandler) ListCourseRules(c *gin.Context) {
	h.listRules(c, model.RuleScopeCourse)
}

// ListInstructorRules 获取教师规则列表
// GET /api/v1/year/:year/rules/instructors
func (h *RuleHandler) ListInstructorRules(c *gin.Context) {
	h.listRules(c, model.RuleScopeInstructor)
}

func (h *RuleHandler) listRules(c *gin.Context, scope string) {
	year, ok := ParseYearParam(c, "year")
	if !ok {
		return
	}

	rules, err := h.ruleSvc.List(c.Request.Context(), year, scope)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rules})
}

// GetRule 获取规则详情
// GET /api/v1/year/:year/rules/:id
func (h *RuleHandler) GetRule(c *gin.Context) {
	year, ok := ParseYearParam(c, "year")
	if !ok {
		return
	}

	rule, err := h.ruleSvc.GetByID(c.Request.Context(), year, c.Param("id"))
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// UpdateRule 更新规则
// PUT /api/v1/year/:year/rules/:id
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	year, ok := ParseYearParam(c, "year")
	if !ok {
		return
	}

	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rule, err := h.ruleSvc.Update(c.Request.Context(), year, c.Param("id"), &req, callerID)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// DeleteRule 删除规则
// DELETE /api/v1/year/:year/rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	year, ok := ParseYearParam(c, "year")
	if !ok {
		return
	}

	if err := h.ruleSvc.Delete(c.Request.Context(), year, c.Param("id")); err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *RuleHandler) handleRuleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRuleNotFound):
		response.NotFound(c, 16001, "规则不存在")
	case errors.Is(err, service.ErrRuleScopeInvalid):
		response.BadRequest(c, 16002, "规则作用域非法")
	case errors.Is(err, service.ErrRuleTypeInvalid):
		response.BadRequest(c, 16003, "规则类型不属于该作用域")
	case errors.Is(err, service.ErrRuleParamsInvalid):
		response.BadRequest(c, 16004, "规则参数非法")
	default:
		response.InternalError(c)
	}
}
