package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chsky1600/qicas/config"
	"github.com/chsky1600/qicas/internal/api/handler"
	"github.com/chsky1600/qicas/internal/api/middleware"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/jwt"
	"github.com/chsky1600/qicas/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, svc *service.Service, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, svc.Auth))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.GET("", middleware.RoleAuth("admin", "coordinator"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
			}

			// 院系模块
			faculty := authorized.Group("/faculty")
			{
				faculty.GET("", h.Faculty.ListFaculties)
				faculty.GET("/:id", h.Faculty.GetFaculty)
				faculty.POST("", middleware.RoleAuth("admin"), h.Faculty.CreateFaculty)
				faculty.DELETE("/:id", middleware.RoleAuth("admin"), h.Faculty.DeleteFaculty)
				faculty.POST("/:id/members/:user_id", middleware.RoleAuth("admin", "coordinator"), h.Faculty.AddMember)
				faculty.DELETE("/:id/members/:user_id", middleware.RoleAuth("admin", "coordinator"), h.Faculty.RemoveMember)
			}

			// 课程模块（按学年隔离，写操作限管理员与协调员）
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth("admin", "coordinator"), h.Course.CreateCourse)
				courses.PATCH("/:id", middleware.RoleAuth("admin", "coordinator"), h.Course.PatchCourse)
				courses.DELETE("/:id", middleware.RoleAuth("admin", "coordinator"), h.Course.ArchiveCourse)
			}

			// 教师模块
			instructors := authorized.Group("/instructors")
			{
				instructors.GET("", h.Instructor.ListInstructors)
				instructors.GET("/:id", h.Instructor.GetInstructor)
				instructors.GET("/:id/assignments", h.Instructor.ListInstructorAssignments)
				instructors.POST("", middleware.RoleAuth("admin", "coordinator"), h.Instructor.CreateInstructor)
				instructors.PATCH("/:id", middleware.RoleAuth("admin", "coordinator"), h.Instructor.PatchInstructor)
				instructors.DELETE("/:id", middleware.RoleAuth("admin", "coordinator"), h.Instructor.ArchiveInstructor)
			}

			// 约束规则模块（按学年隔离，作用域由路由前缀区分）
			rules := authorized.Group("/year/:year/rules")
			{
				rules.GET("/courses", h.Rule.ListCourseRules)
				rules.GET("/instructors", h.Rule.ListInstructorRules)
				rules.POST("/courses", middleware.RoleAuth("admin", "coordinator"), h.Rule.CreateCourseRule)
				rules.POST("/instructors", middleware.RoleAuth("admin", "coordinator"), h.Rule.CreateInstructorRule)
				rules.GET("/:id", h.Rule.GetRule)
				rules.PUT("/:id", middleware.RoleAuth("admin", "coordinator"), h.Rule.UpdateRule)
				rules.DELETE("/:id", middleware.RoleAuth("admin", "coordinator"), h.Rule.DeleteRule)
			}

			// 排课快照模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.ListSchedules)
				schedules.GET("/working", h.Schedule.GetWorkingSchedule)
				schedules.GET("/lineage", h.Schedule.GetScheduleLineage)
				schedules.GET("/promotions", h.Schedule.ListPromotionLogs)
				schedules.GET("/:snapshot_id", h.Schedule.GetSchedule)
				schedules.POST("", middleware.RoleAuth("admin", "coordinator"), h.Schedule.ProposeSchedule)
				schedules.PUT("/:snapshot_id", middleware.RoleAuth("admin", "coordinator"), h.Schedule.PromoteSchedule)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/schedule", h.Export.ExportSchedule)
			}
		}
	}

	return r
}
