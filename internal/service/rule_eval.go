package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chsky1600/qicas/internal/model"
)

// evalContext 规则求值输入：分配集合与已解析的实体引用
// 求值函数只读该上下文，无任何副作用，规则之间互不依赖
type evalContext struct {
	assignments []model.Assignment
	courses     map[string]*model.Course
	instructors map[string]*model.Instructor
}

// evaluateRule 对单条规则求值，返回违规列表（空表示通过）
// 类型集合封闭：未知类型在规则创建时即被拒绝，此处不应出现
func evaluateRule(rule *model.Rule, ec *evalContext) []model.Violation {
	switch rule.RuleType {
	case model.RuleTypeRequireRole:
		return evalRequireRole(rule, ec)
	case model.RuleTypeTimeslotExclusive:
		return evalTimeslotExclusive(rule, ec)
	case model.RuleTypeMaxCoursesPerTerm:
		return evalMaxCoursesPerTerm(rule, ec)
	case model.RuleTypeNoDoubleBooking:
		return evalNoDoubleBooking(rule, ec)
	}
	return nil
}

// evalRequireRole 课程要求至少 N 名指定角色的教师
// 课程未出现在分配集合中时规则不触发（规则只约束已存在的分配）
func evalRequireRole(rule *model.Rule, ec *evalContext) []model.Violation {
	courseID := rule.Params.GetString("course_id")
	role := rule.Params.GetString("role")
	minCount, ok := rule.Params.GetInt("min_count")
	if !ok {
		minCount = 1
	}

	present := false
	matched := map[string]struct{}{}
	for _, a := range ec.assignments {
		if a.CourseID != courseID {
			continue
		}
		present = true
		if inst, found := ec.instructors[a.InstructorID]; found && inst.Role == role {
			matched[a.InstructorID] = struct{}{}
		}
	}
	if !present || len(matched) >= minCount {
		return nil
	}

	return []model.Violation{{
		RuleID:   rule.RuleID,
		Severity: rule.Severity,
		Message: fmt.Sprintf("课程 %s 需要至少 %d 名角色为 %s 的教师，当前 %d 名",
			courseID, minCount, role, len(matched)),
	}}
}

// evalTimeslotExclusive 指定课程集合内任意两门不得共享时段
func evalTimeslotExclusive(rule *model.Rule, ec *evalContext) []model.Violation {
	listed := map[string]struct{}{}
	for _, id := range rule.Params.GetStringSlice("course_ids") {
		listed[id] = struct{}{}
	}

	// slot → 该时段内出现的受约束课程（去重）
	slotCourses := map[string]map[string]struct{}{}
	for _, a := range ec.assignments {
		if _, ok := listed[a.CourseID]; !ok {
			continue
		}
		if slotCourses[a.TimeSlot] == nil {
			slotCourses[a.TimeSlot] = map[string]struct{}{}
		}
		slotCourses[a.TimeSlot][a.CourseID] = struct{}{}
	}

	var violations []model.Violation
	for _, slot := range sortedKeys(slotCourses) {
		courses := slotCourses[slot]
		if len(courses) < 2 {
			continue
		}
		ids := make([]string, 0, len(courses))
		for id := range courses {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		violations = append(violations, model.Violation{
			RuleID:   rule.RuleID,
			Severity: rule.Severity,
			Message:  fmt.Sprintf("课程 %s 在时段 %s 冲突，规则要求互斥", strings.Join(ids, ", "), slot),
		})
	}
	return violations
}

// evalMaxCoursesPerTerm 教师每学期最多授课数
// full_year 课程同时计入秋冬两学期
func evalMaxCoursesPerTerm(rule *model.Rule, ec *evalContext) []model.Violation {
	maxCourses, ok := rule.Params.GetInt("max")
	if !ok {
		return nil
	}

	// instructor → term → 去重后的课程集合
	load := map[string]map[string]map[string]struct{}{}
	record := func(instructorID, term, courseID string) {
		if load[instructorID] == nil {
			load[instructorID] = map[string]map[string]struct{}{}
		}
		if load[instructorID][term] == nil {
			load[instructorID][term] = map[string]struct{}{}
		}
		load[instructorID][term][courseID] = struct{}{}
	}

	for _, a := range ec.assignments {
		course, found := ec.courses[a.CourseID]
		if !found {
			continue
		}
		switch course.Term {
		case model.TermFullYear:
			record(a.InstructorID, model.TermFall, a.CourseID)
			record(a.InstructorID, model.TermWinter, a.CourseID)
		default:
			record(a.InstructorID, course.Term, a.CourseID)
		}
	}

	var violations []model.Violation
	for _, instructorID := range sortedKeys(load) {
		for _, term := range sortedKeys(load[instructorID]) {
			n := len(load[instructorID][term])
			if n <= maxCourses {
				continue
			}
			violations = append(violations, model.Violation{
				RuleID:   rule.RuleID,
				Severity: rule.Severity,
				Message: fmt.Sprintf("教师 %s 在 %s 学期授课 %d 门，超过上限 %d",
					instructorID, term, n, maxCourses),
			})
		}
	}
	return violations
}

// evalNoDoubleBooking 教师同一时段不得分配到多门课程
func evalNoDoubleBooking(rule *model.Rule, ec *evalContext) []model.Violation {
	type key struct {
		instructorID string
		timeSlot     string
	}
	booked := map[key]map[string]struct{}{}
	for _, a := range ec.assignments {
		k := key{a.InstructorID, a.TimeSlot}
		if booked[k] == nil {
			booked[k] = map[string]struct{}{}
		}
		booked[k][a.CourseID] = struct{}{}
	}

	keys := make([]key, 0, len(booked))
	for k := range booked {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].instructorID != keys[j].instructorID {
			return keys[i].instructorID < keys[j].instructorID
		}
		return keys[i].timeSlot < keys[j].timeSlot
	})

	var violations []model.Violation
	for _, k := range keys {
		courses := booked[k]
		if len(courses) < 2 {
			continue
		}
		ids := make([]string, 0, len(courses))
		for id := range courses {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		violations = append(violations, model.Violation{
			RuleID:   rule.RuleID,
			Severity: rule.Severity,
			Message: fmt.Sprintf("教师 %s 在时段 %s 被重复分配: %s",
				k.instructorID, k.timeSlot, strings.Join(ids, ", ")),
		})
	}
	return violations
}

// sortedKeys 返回排序后的 map 键（保证违规消息生成顺序确定）
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
