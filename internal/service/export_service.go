package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoWorking    = errors.New("该院系学年尚无工作排课，无法导出")
	ErrExportNoAssigns    = errors.New("工作排课中无分配项")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 仅导出工作排课（快照是内部制品，导出面向最终发布的课表）
//   - Excel 按 (课程, 教师, 时段) 平铺，附校验状态
//   - ICS 仅导出时段可解析为 "Mon 09:30-11:00" 形态的分配，
//     时段本质是不透明字符串，无法解析的分配跳过而非报错
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWorkingXLSX 导出工作排课为 Excel
	ExportWorkingXLSX(ctx context.Context, facultyID string, year int) (*bytes.Buffer, string, error)
	// ExportWorkingICS 导出工作排课为 iCalendar
	ExportWorkingICS(ctx context.Context, facultyID string, year int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWorkingXLSX — 导出工作排课为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWorkingXLSX(ctx context.Context, facultyID string, year int) (*bytes.Buffer, string, error) {
	schedule, courses, instructors, err := s.loadWorking(ctx, facultyID, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "E", 22)
	f.SetColWidth(sheetName, "F", "F", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d 学年课表（快照 %s）", year, schedule.SnapshotID[:12]))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"课程编号", "课程名称", "学期", "教师", "教师角色", "时段"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", col), h)
	}

	// 数据行：按 (课程, 时段, 教师) 排序保证输出稳定
	assignments := make([]model.Assignment, len(schedule.Assignments))
	copy(assignments, schedule.Assignments)
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].CourseID != assignments[j].CourseID {
			return assignments[i].CourseID < assignments[j].CourseID
		}
		if assignments[i].TimeSlot != assignments[j].TimeSlot {
			return assignments[i].TimeSlot < assignments[j].TimeSlot
		}
		return assignments[i].InstructorID < assignments[j].InstructorID
	})

	row := 3
	for _, a := range assignments {
		title, term := "", ""
		if c, ok := courses[a.CourseID]; ok {
			title, term = c.Title, c.Term
		}
		instructorName, instructorRole := a.InstructorID, ""
		if inst, ok := instructors[a.InstructorID]; ok {
			instructorName, instructorRole = inst.Name, inst.Role
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), a.CourseID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), term)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), instructorName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), instructorRole)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), a.TimeSlot)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%d_%s.xlsx", year, schedule.SnapshotID[:12])
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportWorkingICS — 导出工作排课为 iCalendar
// ═══════════════════════════════════════════════════════════

// slotPattern 可解析时段形态: "Mon 09:30-11:00"（星期缩写不区分大小写）
var slotPattern = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)\s+(\d{2}):(\d{2})-(\d{2}):(\d{2})$`)

var slotWeekdays = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

func (s *exportService) ExportWorkingICS(ctx context.Context, facultyID string, year int) (*bytes.Buffer, string, error) {
	schedule, courses, instructors, err := s.loadWorking(ctx, facultyID, year)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//qicas//schedule-export//EN")

	// 事件锚定到学年秋季学期第一个对应星期（9 月第一周起算）
	termStart := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)

	for i, a := range schedule.Assignments {
		m := slotPattern.FindStringSubmatch(a.TimeSlot)
		if m == nil {
			continue // 不透明时段，无法映射到日历事件
		}

		weekday := slotWeekdays[strings.ToLower(m[1])]
		day := termStart
		for day.Weekday() != weekday {
			day = day.AddDate(0, 0, 1)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), atoi2(m[2]), atoi2(m[3]), 0, 0, time.UTC)
		end := time.Date(day.Year(), day.Month(), day.Day(), atoi2(m[4]), atoi2(m[5]), 0, 0, time.UTC)

		summary := a.CourseID
		if c, ok := courses[a.CourseID]; ok {
			summary = fmt.Sprintf("%s %s", a.CourseID, c.Title)
		}
		description := a.InstructorID
		if inst, ok := instructors[a.InstructorID]; ok {
			description = inst.Name
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d@qicas", schedule.SnapshotID[:12], i))
		event.SetCreatedTime(schedule.CreatedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(summary)
		event.SetDescription(description)
		event.AddRrule("FREQ=WEEKLY;COUNT=13")
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课表_%d_%s.ics", year, schedule.SnapshotID[:12])
	return buf, filename, nil
}

// ── 辅助函数 ──

// loadWorking 加载工作排课与引用的实体索引
func (s *exportService) loadWorking(ctx context.Context, facultyID string, year int) (*model.Schedule, map[string]*model.Course, map[string]*model.Instructor, error) {
	schedule, err := s.repo.Schedule.GetWorking(ctx, facultyID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrExportNoWorking
		}
		s.logger.Error("查询工作排课失败", zap.String("faculty_id", facultyID), zap.Error(err))
		return nil, nil, nil, err
	}
	if len(schedule.Assignments) == 0 {
		return nil, nil, nil, ErrExportNoAssigns
	}

	courseIDs := map[string]struct{}{}
	instructorIDs := map[string]struct{}{}
	for _, a := range schedule.Assignments {
		courseIDs[a.CourseID] = struct{}{}
		instructorIDs[a.InstructorID] = struct{}{}
	}

	courses, err := s.repo.Course.ListByIDs(ctx, year, setToSlice(courseIDs))
	if err != nil {
		return nil, nil, nil, err
	}
	instructors, err := s.repo.Instructor.ListByIDs(ctx, year, setToSlice(instructorIDs))
	if err != nil {
		return nil, nil, nil, err
	}

	courseMap := make(map[string]*model.Course, len(courses))
	for i := range courses {
		courseMap[courses[i].CourseID] = &courses[i]
	}
	instructorMap := make(map[string]*model.Instructor, len(instructors))
	for i := range instructors {
		instructorMap[instructors[i].InstructorID] = &instructors[i]
	}

	return schedule, courseMap, instructorMap, nil
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
