package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chsky1600/qicas/config"
	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/model"
	"github.com/chsky1600/qicas/internal/repository"
	"github.com/chsky1600/qicas/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *repository.Repository, *jwt.Manager) {
	repo := newMockRepository()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-0123456789",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	svc := NewAuthService(repo, jwtMgr, nil, zap.NewNop())
	return svc, repo, jwtMgr
}

func seedUser(repo *repository.Repository, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Name: "测试用户", Email: email,
		PasswordHash: string(hash), Role: model.UserRoleCoordinator,
	}
	repo.User.Create(context.Background(), user)
	return user
}

// ── Login ──

func TestAuth_Login_Success(t *testing.T) {
	svc, repo, jwtMgr := setupTestAuthService()
	seedUser(repo, "admin@example.com", "correct-password")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "admin@example.com", Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("Token 对不应为空")
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("Access Token 应可解析: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 token_type=access，实际=%s", claims.TokenType)
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	svc, repo, _ := setupTestAuthService()
	seedUser(repo, "admin@example.com", "correct-password")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "admin@example.com", Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	// 未注册邮箱与错误密码返回同一错误，避免账号探测
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

// ── Refresh ──

func TestAuth_Refresh_RejectsAccessToken(t *testing.T) {
	svc, repo, jwtMgr := setupTestAuthService()
	user := seedUser(repo, "admin@example.com", "correct-password")

	accessToken, _ := jwtMgr.GenerateAccessToken(user.UserID, user.Role, "")
	_, err := svc.Refresh(context.Background(), accessToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Access Token 不应可用于刷新，实际=%v", err)
	}
}

func TestAuth_Refresh_Success(t *testing.T) {
	svc, repo, jwtMgr := setupTestAuthService()
	user := seedUser(repo, "admin@example.com", "correct-password")

	refreshToken, _ := jwtMgr.GenerateRefreshToken(user.UserID, user.Role, "")
	result, err := svc.Refresh(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("刷新后应返回新 Access Token")
	}
}
