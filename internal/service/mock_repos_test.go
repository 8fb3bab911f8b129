package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
	pkgerrors "github.com/chsky1600/qicas/pkg/errors"
)

func yearKey(id string, year int) string {
	return fmt.Sprintf("%s|%d", id, year)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock FacultyRepository ──

type mockFacultyRepo struct {
	faculties map[string]*model.Faculty
	members   map[string]map[string]struct{} // facultyID → userID 集合
}

func newMockFacultyRepo() *mockFacultyRepo {
	return &mockFacultyRepo{
		faculties: make(map[string]*model.Faculty),
		members:   make(map[string]map[string]struct{}),
	}
}

func (m *mockFacultyRepo) Create(_ context.Context, faculty *model.Faculty) error {
	if faculty.FacultyID == "" {
		faculty.FacultyID = "fac-" + faculty.Name
	}
	m.faculties[faculty.FacultyID] = faculty
	return nil
}

func (m *mockFacultyRepo) GetByID(_ context.Context, id string) (*model.Faculty, error) {
	if f, ok := m.faculties[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) GetByName(_ context.Context, name string) (*model.Faculty, error) {
	for _, f := range m.faculties {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) List(_ context.Context) ([]model.Faculty, error) {
	var result []model.Faculty
	for _, f := range m.faculties {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFacultyRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.faculties[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.faculties, id)
	delete(m.members, id)
	return nil
}

func (m *mockFacultyRepo) AddMember(_ context.Context, facultyID, userID string) error {
	if m.members[facultyID] == nil {
		m.members[facultyID] = make(map[string]struct{})
	}
	m.members[facultyID][userID] = struct{}{}
	return nil
}

func (m *mockFacultyRepo) RemoveMember(_ context.Context, facultyID, userID string) error {
	if _, ok := m.members[facultyID][userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.members[facultyID], userID)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course // "id|year" → Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.courses[yearKey(course.CourseID, course.Year)] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string, year int) (*model.Course, error) {
	if c, ok := m.courses[yearKey(id, year)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, year int, filter repository.CourseFilter) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.Year != year {
			continue
		}
		if filter.Term != "" && c.Term != filter.Term {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockCourseRepo) ListByIDs(_ context.Context, year int, ids []string) ([]model.Course, error) {
	var result []model.Course
	for _, id := range ids {
		if c, ok := m.courses[yearKey(id, year)]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	key := yearKey(course.CourseID, course.Year)
	if _, ok := m.courses[key]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.courses[key] = course
	return nil
}

// ── Mock InstructorRepository ──

type mockInstructorRepo struct {
	instructors map[string]*model.Instructor // "id|year" → Instructor
}

func newMockInstructorRepo() *mockInstructorRepo {
	return &mockInstructorRepo{instructors: make(map[string]*model.Instructor)}
}

func (m *mockInstructorRepo) Create(_ context.Context, instructor *model.Instructor) error {
	m.instructors[yearKey(instructor.InstructorID, instructor.Year)] = instructor
	return nil
}

func (m *mockInstructorRepo) GetByID(_ context.Context, id string, year int) (*model.Instructor, error) {
	if i, ok := m.instructors[yearKey(id, year)]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) List(_ context.Context, year int, filter repository.InstructorFilter) ([]model.Instructor, error) {
	var result []model.Instructor
	for _, i := range m.instructors {
		if i.Year != year {
			continue
		}
		if filter.Role != "" && i.Role != filter.Role {
			continue
		}
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		if filter.FacultyID != "" && model.StringValue(i.FacultyID) != filter.FacultyID {
			continue
		}
		result = append(result, *i)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].InstructorID < result[j].InstructorID })
	return result, nil
}

func (m *mockInstructorRepo) ListByIDs(_ context.Context, year int, ids []string) ([]model.Instructor, error) {
	var result []model.Instructor
	for _, id := range ids {
		if i, ok := m.instructors[yearKey(id, year)]; ok {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockInstructorRepo) Update(_ context.Context, instructor *model.Instructor) error {
	key := yearKey(instructor.InstructorID, instructor.Year)
	if _, ok := m.instructors[key]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.instructors[key] = instructor
	return nil
}

// ── Mock RuleRepository ──

type mockRuleRepo struct {
	rules   map[string]*model.Rule
	nextSeq int
}

func newMockRuleRepo() *mockRuleRepo {
	return &mockRuleRepo{rules: make(map[string]*model.Rule)}
}

func (m *mockRuleRepo) Create(_ context.Context, rule *model.Rule) error {
	if rule.RuleID == "" {
		m.nextSeq++
		rule.RuleID = fmt.Sprintf("rule-%03d", m.nextSeq)
	}
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockRuleRepo) GetByID(_ context.Context, year int, id string) (*model.Rule, error) {
	if r, ok := m.rules[id]; ok && r.Year == year {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRuleRepo) List(_ context.Context, year int, scope string) ([]model.Rule, error) {
	var result []model.Rule
	for _, r := range m.rules {
		if r.Year != year {
			continue
		}
		if scope != "" && r.Scope != scope {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RuleID < result[j].RuleID })
	return result, nil
}

func (m *mockRuleRepo) ListEnabled(_ context.Context, year int) ([]model.Rule, error) {
	var result []model.Rule
	for _, r := range m.rules {
		if r.Year == year && r.IsEnabled {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RuleID < result[j].RuleID })
	return result, nil
}

func (m *mockRuleRepo) Update(_ context.Context, rule *model.Rule) error {
	if _, ok := m.rules[rule.RuleID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockRuleRepo) Delete(_ context.Context, year int, id string) error {
	if r, ok := m.rules[id]; !ok || r.Year != year {
		return gorm.ErrRecordNotFound
	}
	delete(m.rules, id)
	return nil
}

// ── Mock ScheduleRepository ──
//
// 带互斥锁：并发 Propose 收敛测试会从多个 goroutine 访问

type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*model.Schedule
	pointers  map[string]*model.WorkingSchedule // "facultyID|year" → 指针
	logs      []model.PromotionLog
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{
		schedules: make(map[string]*model.Schedule),
		pointers:  make(map[string]*model.WorkingSchedule),
	}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) (bool, *model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.schedules[schedule.SnapshotID]; ok {
		return false, existing, nil
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now()
	}
	m.schedules[schedule.SnapshotID] = schedule
	return true, schedule, nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, snapshotID string) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[snapshotID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListByFacultyYear(_ context.Context, facultyID string, year int, limit int) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.FacultyID == facultyID && s.Year == year {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].SnapshotID < result[j].SnapshotID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockScheduleRepo) CountByFaculty(_ context.Context, facultyID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.schedules {
		if s.FacultyID == facultyID {
			count++
		}
	}
	return count, nil
}

func (m *mockScheduleRepo) GetWorkingPointer(_ context.Context, facultyID string, year int) (*model.WorkingSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pointers[yearKey(facultyID, year)]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetWorking(_ context.Context, facultyID string, year int) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pointers[yearKey(facultyID, year)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, ok := m.schedules[p.SnapshotID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) SetWorking(_ context.Context, facultyID string, year int, snapshotID string, operatorID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.schedules[snapshotID]
	if !ok || snapshot.FacultyID != facultyID || snapshot.Year != year {
		return gorm.ErrRecordNotFound
	}
	if !snapshot.ValidationPass {
		return pkgerrors.ErrSnapshotNotValidated
	}

	key := yearKey(facultyID, year)
	var oldSnapshotID *string
	if p, ok := m.pointers[key]; ok {
		if p.SnapshotID == snapshotID {
			return nil
		}
		old := p.SnapshotID
		oldSnapshotID = &old
		p.SnapshotID = snapshotID
		p.UpdatedBy = operatorID
		p.Version++
	} else {
		m.pointers[key] = &model.WorkingSchedule{
			FacultyID:  facultyID,
			Year:       year,
			SnapshotID: snapshotID,
			UpdatedBy:  operatorID,
			Version:    1,
		}
	}

	m.logs = append(m.logs, model.PromotionLog{
		LogID:         fmt.Sprintf("log-%03d", len(m.logs)+1),
		FacultyID:     facultyID,
		Year:          year,
		OldSnapshotID: oldSnapshotID,
		NewSnapshotID: snapshotID,
		OperatorID:    operatorID,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (m *mockScheduleRepo) ListPromotionLogs(_ context.Context, facultyID string, year int) ([]model.PromotionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.PromotionLog
	for _, l := range m.logs {
		if l.FacultyID == facultyID && l.Year == year {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) WorkingReferencesCourse(_ context.Context, year int, courseID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pointers {
		if p.Year != year {
			continue
		}
		s, ok := m.schedules[p.SnapshotID]
		if !ok {
			continue
		}
		for _, a := range s.Assignments {
			if a.CourseID == courseID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockScheduleRepo) WorkingReferencesInstructor(_ context.Context, year int, instructorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pointers {
		if p.Year != year {
			continue
		}
		s, ok := m.schedules[p.SnapshotID]
		if !ok {
			continue
		}
		for _, a := range s.Assignments {
			if a.InstructorID == instructorID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockScheduleRepo) ListWorkingReferencingInstructor(_ context.Context, year int, instructorID string) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Schedule
	for _, p := range m.pointers {
		if p.Year != year {
			continue
		}
		s, ok := m.schedules[p.SnapshotID]
		if !ok {
			continue
		}
		for _, a := range s.Assignments {
			if a.InstructorID == instructorID {
				result = append(result, *s)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FacultyID < result[j].FacultyID })
	return result, nil
}

// ── 聚合辅助 ──

func newMockRepository() *repository.Repository {
	return &repository.Repository{
		User:       newMockUserRepo(),
		Faculty:    newMockFacultyRepo(),
		Course:     newMockCourseRepo(),
		Instructor: newMockInstructorRepo(),
		Rule:       newMockRuleRepo(),
		Schedule:   newMockScheduleRepo(),
	}
}
