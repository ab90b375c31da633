package service

import (
	"context"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestLoginAndRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.seedUser(t, model.RoleUser)

	tokens, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	rotated, err := env.auth.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The consumed refresh token must be dead.
	_, err = env.auth.Refresh(context.Background(), tokens.RefreshToken)
	if apperr.CategoryOf(err) != apperr.CategoryUnauthorized {
		t.Fatalf("reusing rotated token = %v, want UNAUTHORIZED", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.seedUser(t, model.RoleUser)

	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "not-the-password",
	})
	if apperr.CategoryOf(err) != apperr.CategoryUnauthorized {
		t.Fatalf("login with wrong password = %v, want UNAUTHORIZED", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.seedUser(t, model.RoleUser)

	tokens, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := env.auth.Logout(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	_, err = env.auth.Refresh(context.Background(), tokens.RefreshToken)
	if apperr.CategoryOf(err) != apperr.CategoryUnauthorized {
		t.Fatalf("refresh after logout = %v, want UNAUTHORIZED", err)
	}
}

func TestCreateUserRoleGating(t *testing.T) {
	env := newTestEnv(t)
	superadmin, _ := env.seedUser(t, model.RoleSuperadmin)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)

	// Plain users never provision accounts.
	_, err := env.auth.CreateUser(context.Background(), user, CreateUserRequest{
		Username: "newbie", Email: "newbie@example.com", Name: "Newbie", Password: "secret123", Role: model.RoleUser,
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("create as user = %v, want FORBIDDEN", err)
	}

	// Admins create user-tier accounts but cannot mint other admins.
	if _, err := env.auth.CreateUser(context.Background(), admin, CreateUserRequest{
		Username: "clerk", Email: "clerk@example.com", Name: "Clerk", Password: "secret123", Role: model.RoleUser,
	}); err != nil {
		t.Fatalf("admin creating user failed: %v", err)
	}
	_, err = env.auth.CreateUser(context.Background(), admin, CreateUserRequest{
		Username: "rival", Email: "rival@example.com", Name: "Rival", Password: "secret123", Role: model.RoleAdmin,
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("admin creating admin = %v, want FORBIDDEN", err)
	}

	// Superadmins can.
	if _, err := env.auth.CreateUser(context.Background(), superadmin, CreateUserRequest{
		Username: "manager", Email: "manager@example.com", Name: "Manager", Password: "secret123", Role: model.RoleAdmin,
	}); err != nil {
		t.Fatalf("superadmin creating admin failed: %v", err)
	}
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)

	req := CreateUserRequest{
		Username: "dupe", Email: "dupe@example.com", Name: "Dupe", Password: "secret123", Role: model.RoleUser,
	}
	if _, err := env.auth.CreateUser(context.Background(), admin, req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	req.Username = "dupe2"
	_, err := env.auth.CreateUser(context.Background(), admin, req)
	if apperr.CategoryOf(err) != apperr.CategoryConflict {
		t.Fatalf("duplicate email = %v, want CONFLICT", err)
	}
}

func TestDeleteUserNoSelfDelete(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)

	err := env.auth.DeleteUser(context.Background(), admin, admin.ID.String())
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("self-delete = %v, want VALIDATION_ERROR", err)
	}
}
