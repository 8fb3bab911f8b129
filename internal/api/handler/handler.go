package handler

import "github.com/chsky1600/qicas/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Faculty    *FacultyHandler
	Course     *CourseHandler
	Instructor *InstructorHandler
	Rule       *RuleHandler
	Schedule   *ScheduleHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Faculty:    NewFacultyHandler(svc.Faculty),
		Course:     NewCourseHandler(svc.Course),
		Instructor: NewInstructorHandler(svc.Instructor),
		Rule:       NewRuleHandler(svc.Rule),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Export:     NewExportHandler(svc.Export),
	}
}
