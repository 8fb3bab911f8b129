package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 测试辅助 ──

func setupTestCourseService() (CourseService, *repository.Repository) {
	repo := newMockRepository()
	svc := NewCourseService(repo, zap.NewNop())
	return svc, repo
}

// ── Create ──

func TestCourse_Create_Success(t *testing.T) {
	svc, _ := setupTestCourseService()

	result, err := svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.StatusActive {
		t.Errorf("新课程应为 active，实际=%s", result.Status)
	}
}

func TestCourse_Create_Duplicate(t *testing.T) {
	svc, _ := setupTestCourseService()
	req := &dto.UpsertCourseRequest{CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall}

	svc.Create(context.Background(), req, "admin-001")
	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrCourseExists) {
		t.Fatalf("期望 ErrCourseExists，实际=%v", err)
	}
}

func TestCourse_Create_SameIDDifferentYear(t *testing.T) {
	svc, _ := setupTestCourseService()

	svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")
	// 标识符唯一性以学年为边界
	_, err := svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2026, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")
	if err != nil {
		t.Fatalf("不同学年的同名课程应允许: %v", err)
	}
}

func TestCourse_Create_InvalidTerm(t *testing.T) {
	svc, _ := setupTestCourseService()

	_, err := svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: "summer",
	}, "admin-001")
	if !errors.Is(err, ErrCourseTermInvalid) {
		t.Fatalf("期望 ErrCourseTermInvalid，实际=%v", err)
	}
}

// ── Patch ──

func TestCourse_Patch_Success(t *testing.T) {
	svc, _ := setupTestCourseService()
	svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")

	newTitle := "程序设计基础（修订）"
	result, err := svc.Patch(context.Background(), "CS101", 2025, &dto.PatchCourseRequest{Title: &newTitle}, "admin-001")
	if err != nil {
		t.Fatalf("Patch 应成功: %v", err)
	}
	if result.Title != newTitle {
		t.Errorf("期望标题更新，实际=%s", result.Title)
	}
}

func TestCourse_Patch_Archived(t *testing.T) {
	svc, _ := setupTestCourseService()
	svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")
	svc.Archive(context.Background(), "CS101", 2025, "admin-001")

	newTitle := "不应生效"
	_, err := svc.Patch(context.Background(), "CS101", 2025, &dto.PatchCourseRequest{Title: &newTitle}, "admin-001")
	if !errors.Is(err, ErrCourseArchived) {
		t.Fatalf("期望 ErrCourseArchived，实际=%v", err)
	}
}

// ── Archive ──

func TestCourse_Archive_GuardedByWorkingSchedule(t *testing.T) {
	svc, repo := setupTestCourseService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")
	repo.Instructor.Create(ctx, &model.Instructor{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: model.RoleProfessor, Status: model.StatusActive,
	})

	// 建立引用 CS101 的工作排课
	facultyID := seedFaculty(repo, "计算机学院")
	snapshot := &model.Schedule{
		SnapshotID: model.ComputeSnapshotID(2025, facultyID, nil, []model.Assignment{
			{CourseID: "CS101", InstructorID: "prof-zhang", TimeSlot: "Mon 09:00-10:30"},
		}),
		Year: 2025, FacultyID: facultyID,
		Assignments: model.AssignmentList{
			{CourseID: "CS101", InstructorID: "prof-zhang", TimeSlot: "Mon 09:00-10:30"},
		},
		ValidationPass: true,
	}
	repo.Schedule.Create(ctx, snapshot)
	repo.Schedule.SetWorking(ctx, facultyID, 2025, snapshot.SnapshotID, nil)

	err := svc.Archive(ctx, "CS101", 2025, "admin-001")
	if !errors.Is(err, ErrCourseInWorkingSched) {
		t.Fatalf("被工作排课引用的课程应拒绝归档，实际=%v", err)
	}

	// 课程仍应为 active
	course, _ := svc.GetByID(ctx, "CS101", 2025)
	if course.Status != model.StatusActive {
		t.Errorf("归档被拒后状态不应改变，实际=%s", course.Status)
	}
}

func TestCourse_Archive_NonWorkingReferenceSucceeds(t *testing.T) {
	svc, repo := setupTestCourseService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")

	// 快照引用了 CS101，但从未被提升为工作排课
	facultyID := seedFaculty(repo, "计算机学院")
	repo.Schedule.Create(ctx, &model.Schedule{
		SnapshotID: model.ComputeSnapshotID(2025, facultyID, nil, []model.Assignment{
			{CourseID: "CS101", InstructorID: "prof-zhang", TimeSlot: "Mon 09:00-10:30"},
		}),
		Year: 2025, FacultyID: facultyID,
		Assignments: model.AssignmentList{
			{CourseID: "CS101", InstructorID: "prof-zhang", TimeSlot: "Mon 09:00-10:30"},
		},
		ValidationPass: true,
	})

	// 仅非工作快照引用不阻止归档
	if err := svc.Archive(ctx, "CS101", 2025, "admin-001"); err != nil {
		t.Fatalf("非工作快照引用的课程应允许归档: %v", err)
	}
	course, _ := svc.GetByID(ctx, "CS101", 2025)
	if course.Status != model.StatusArchived {
		t.Errorf("期望状态 archived，实际=%s", course.Status)
	}
}

func TestCourse_Archive_Idempotent(t *testing.T) {
	svc, _ := setupTestCourseService()
	svc.Create(context.Background(), &dto.UpsertCourseRequest{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall,
	}, "admin-001")

	if err := svc.Archive(context.Background(), "CS101", 2025, "admin-001"); err != nil {
		t.Fatalf("Archive 应成功: %v", err)
	}
	if err := svc.Archive(context.Background(), "CS101", 2025, "admin-001"); err != nil {
		t.Fatalf("重复归档应幂等: %v", err)
	}
}

func TestCourse_Archive_NotFound(t *testing.T) {
	svc, _ := setupTestCourseService()

	err := svc.Archive(context.Background(), "CS999", 2025, "admin-001")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("期望 ErrCourseNotFound，实际=%v", err)
	}
}

// ── List ──

func TestCourse_List_FilterByTerm(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertCourseRequest{CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall}, "admin-001")
	svc.Create(ctx, &dto.UpsertCourseRequest{CourseID: "CS102", Year: 2025, Title: "离散数学", Term: model.TermWinter}, "admin-001")

	result, err := svc.List(ctx, &dto.CourseListRequest{Year: 2025, Term: model.TermFall})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 || result[0].CourseID != "CS101" {
		t.Errorf("期望仅返回秋季课程，实际=%v", result)
	}
}
