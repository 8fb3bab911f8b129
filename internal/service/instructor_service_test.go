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

func setupTestInstructorService() (InstructorService, *repository.Repository) {
	repo := newMockRepository()
	svc := NewInstructorService(repo, zap.NewNop())
	return svc, repo
}

// ── Create ──

func TestInstructor_Create_InvalidRole(t *testing.T) {
	svc, _ := setupTestInstructorService()

	_, err := svc.Create(context.Background(), &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: "dean",
	}, "admin-001")
	if !errors.Is(err, ErrInstructorRoleInvalid) {
		t.Fatalf("期望 ErrInstructorRoleInvalid，实际=%v", err)
	}
}

func TestInstructor_Create_UnknownFaculty(t *testing.T) {
	svc, _ := setupTestInstructorService()

	_, err := svc.Create(context.Background(), &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授",
		Role: model.RoleProfessor, FacultyID: "fac-missing",
	}, "admin-001")
	if !errors.Is(err, ErrFacultyNotFound) {
		t.Fatalf("期望 ErrFacultyNotFound，实际=%v", err)
	}
}

// ── Archive ──

func TestInstructor_Create_WithoutFaculty(t *testing.T) {
	svc, repo := setupTestInstructorService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: model.RoleProfessor,
	}, "admin-001")
	if err != nil {
		t.Fatalf("无院系的教师应创建成功: %v", err)
	}

	// 空院系必须落库为 NULL，不能是 ''（uuid 列拒绝空串）
	stored, err := repo.Instructor.GetByID(ctx, "prof-zhang", 2025)
	if err != nil {
		t.Fatalf("读取教师失败: %v", err)
	}
	if stored.FacultyID != nil {
		t.Errorf("期望 FacultyID 为 nil，实际=%q", *stored.FacultyID)
	}
}

func TestInstructor_Archive_GuardedByWorkingSchedule(t *testing.T) {
	svc, repo := setupTestInstructorService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: model.RoleProfessor,
	}, "admin-001")
	repo.Course.Create(ctx, &model.Course{
		CourseID: "CS101", Year: 2025, Title: "程序设计基础", Term: model.TermFall, Status: model.StatusActive,
	})

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

	err := svc.Archive(ctx, "prof-zhang", 2025, "admin-001")
	if !errors.Is(err, ErrInstructorInWorkingSched) {
		t.Fatalf("被工作排课引用的教师应拒绝归档，实际=%v", err)
	}
}

func TestInstructor_Archive_NonWorkingReferenceSucceeds(t *testing.T) {
	svc, repo := setupTestInstructorService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: model.RoleProfessor,
	}, "admin-001")

	// 快照引用了该教师，但从未被提升为工作排课
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

	if err := svc.Archive(ctx, "prof-zhang", 2025, "admin-001"); err != nil {
		t.Fatalf("非工作快照引用的教师应允许归档: %v", err)
	}
	instructor, _ := svc.GetByID(ctx, "prof-zhang", 2025)
	if instructor.Status != model.StatusArchived {
		t.Errorf("期望状态 archived，实际=%s", instructor.Status)
	}
}

// ── ListAssignments ──

func TestInstructor_ListAssignments(t *testing.T) {
	svc, repo := setupTestInstructorService()
	ctx := context.Background()
	svc.Create(ctx, &dto.UpsertInstructorRequest{
		InstructorID: "prof-zhang", Year: 2025, Name: "张教授", Role: model.RoleProfessor,
	}, "admin-001")

	facultyID := seedFaculty(repo, "计算机学院")
	assignments := []model.Assignment{
		{CourseID: "CS101", InstructorID: "prof-zhang", TimeSlot: "Mon 09:00-10:30"},
		{CourseID: "CS201", InstructorID: "ta-li", TimeSlot: "Tue 13:00-14:30"},
	}
	snapshot := &model.Schedule{
		SnapshotID:     model.ComputeSnapshotID(2025, facultyID, nil, assignments),
		Year:           2025,
		FacultyID:      facultyID,
		Assignments:    assignments,
		ValidationPass: true,
	}
	repo.Schedule.Create(ctx, snapshot)
	repo.Schedule.SetWorking(ctx, facultyID, 2025, snapshot.SnapshotID, nil)

	result, err := svc.ListAssignments(ctx, "prof-zhang", 2025)
	if err != nil {
		t.Fatalf("ListAssignments 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("期望 1 条分配，实际=%d", len(result))
	}
	if result[0].CourseID != "CS101" {
		t.Errorf("期望 CS101，实际=%s", result[0].CourseID)
	}
}

func TestInstructor_ListAssignments_NotFound(t *testing.T) {
	svc, _ := setupTestInstructorService()

	_, err := svc.ListAssignments(context.Background(), "prof-missing", 2025)
	if !errors.Is(err, ErrInstructorNotFound) {
		t.Fatalf("期望 ErrInstructorNotFound，实际=%v", err)
	}
}
