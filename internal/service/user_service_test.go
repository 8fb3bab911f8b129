package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/repository"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *repository.Repository) {
	repo := newMockRepository()
	svc := NewUserService(repo, zap.NewNop())
	return svc, repo
}

// ── Create ──

func TestUser_Create_WithoutFaculty(t *testing.T) {
	svc, repo := setupTestUserService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateUserRequest{
		Name: "李老师", Email: "li@example.edu", Password: "Passw0rd!",
	}, "admin-001")
	if err != nil {
		t.Fatalf("无院系的用户应创建成功: %v", err)
	}

	// 空院系必须落库为 NULL，不能是 ''（uuid 列拒绝空串）
	stored, err := repo.User.GetByEmail(ctx, "li@example.edu")
	if err != nil {
		t.Fatalf("读取用户失败: %v", err)
	}
	if stored.FacultyID != nil {
		t.Errorf("期望 FacultyID 为 nil，实际=%q", *stored.FacultyID)
	}
}

func TestUser_Create_UnknownFaculty(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name: "李老师", Email: "li@example.edu", Password: "Passw0rd!",
		FacultyID: "fac-missing",
	}, "admin-001")
	if !errors.Is(err, ErrFacultyNotFound) {
		t.Fatalf("期望 ErrFacultyNotFound，实际=%v", err)
	}
}

func TestUser_Create_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestUserService()
	ctx := context.Background()
	svc.Create(ctx, &dto.CreateUserRequest{
		Name: "李老师", Email: "li@example.edu", Password: "Passw0rd!",
	}, "admin-001")

	_, err := svc.Create(ctx, &dto.CreateUserRequest{
		Name: "另一个李老师", Email: "li@example.edu", Password: "Passw0rd!",
	}, "admin-001")
	if !errors.Is(err, ErrUserEmailExists) {
		t.Fatalf("期望 ErrUserEmailExists，实际=%v", err)
	}
}

// ── Update ──

func TestUser_Update_SetAndClearFaculty(t *testing.T) {
	svc, repo := setupTestUserService()
	ctx := context.Background()
	facultyID := seedFaculty(repo, "计算机学院")

	created, err := svc.Create(ctx, &dto.CreateUserRequest{
		Name: "李老师", Email: "li@example.edu", Password: "Passw0rd!",
		FacultyID: facultyID,
	}, "admin-001")
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	stored, _ := repo.User.GetByID(ctx, created.ID)
	if stored.FacultyID == nil || *stored.FacultyID != facultyID {
		t.Fatalf("期望 FacultyID=%s，实际=%v", facultyID, stored.FacultyID)
	}

	// 传入空串表示清除院系归属，落库为 NULL
	empty := ""
	if _, err := svc.Update(ctx, created.ID, &dto.UpdateUserRequest{FacultyID: &empty}, "admin-001"); err != nil {
		t.Fatalf("清除院系归属应成功: %v", err)
	}
	stored, _ = repo.User.GetByID(ctx, created.ID)
	if stored.FacultyID != nil {
		t.Errorf("清除后期望 FacultyID 为 nil，实际=%q", *stored.FacultyID)
	}
}
