package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Faculty    FacultyRepository
	Course     CourseRepository
	Instructor InstructorRepository
	Rule       RuleRepository
	Schedule   ScheduleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Faculty:    NewFacultyRepo(db),
		Course:     NewCourseRepo(db),
		Instructor: NewInstructorRepo(db),
		Rule:       NewRuleRepo(db),
		Schedule:   NewScheduleRepo(db),
	}
}
