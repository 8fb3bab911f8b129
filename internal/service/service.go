package service

import (
	"go.uber.org/zap"

	"github.com/chsky1600/qicas/internal/repository"
	"github.com/chsky1600/qicas/pkg/jwt"
	"github.com/chsky1600/qicas/pkg/redis"
)

// Service 所有业务 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Faculty    FacultyService
	Course     CourseService
	Instructor InstructorService
	Rule       RuleService
	Validation ValidationService
	Schedule   ScheduleService
	Export     ExportService
}

// NewService 创建 Service 聚合
// redisClient 可为 nil（降级模式：黑名单与限流不可用）
func NewService(repo *repository.Repository, jwtMgr *jwt.Manager, redisClient *redis.Client, logger *zap.Logger) *Service {
	validation := NewValidationService(repo, logger)
	schedule := NewScheduleService(repo, validation, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, redisClient, logger),
		User:       NewUserService(repo, logger),
		Faculty:    NewFacultyService(repo, logger),
		Course:     NewCourseService(repo, logger),
		Instructor: NewInstructorService(repo, logger),
		Rule:       NewRuleService(repo, logger),
		Validation: validation,
		Schedule:   schedule,
		Export:     NewExportService(repo, logger),
	}
}
