package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cbt-portal/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSignupAndSignin(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	user, err := svc.Signup("Student@School.Test ", "hunter22", "Ada Obi", models.RoleStudent)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "student@school.test" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}
	if user.Profile.Role != models.RoleStudent || user.Profile.FullName != "Ada Obi" {
		t.Fatalf("profile not created: %+v", user.Profile)
	}

	token, signedIn, err := svc.Signin("student@school.test", "hunter22")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Fatalf("signed in as user %d, want %d", signedIn.ID, user.ID)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if role, _ := claims["role"].(string); role != models.RoleStudent {
		t.Fatalf("token role = %q, want student", role)
	}
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	if _, err := svc.Signup("student@school.test", "hunter22", "Ada Obi", models.RoleStudent); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Signin("student@school.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Signin("nobody@school.test", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	if _, err := svc.Signup("student@school.test", "hunter22", "Ada Obi", models.RoleStudent); err != nil {
		t.Fatalf("signup: %v", err)
	}
	// Same address with different casing is still the same account.
	if _, err := svc.Signup("STUDENT@school.test", "other", "Someone Else", models.RoleStudent); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	if _, err := svc.Signup("x@school.test", "pw", "X", "principal"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAdminBootstrap(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	// The first admin can self-register.
	if _, err := svc.Signup("admin@school.test", "pw", "First Admin", models.RoleAdmin); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	// Once one exists, admin signup is closed.
	if _, err := svc.Signup("admin2@school.test", "pw", "Second Admin", models.RoleAdmin); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}

	// Students and teachers are unaffected.
	if _, err := svc.Signup("teacher@school.test", "pw", "A Teacher", models.RoleTeacher); err != nil {
		t.Fatalf("teacher signup after admin exists: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), "test-secret")

	created, err := svc.Signup("student@school.test", "pw", "Ada Obi", models.RoleStudent)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	got, err := svc.CurrentUser(created.ID)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.Email != created.Email || got.Profile.FullName != "Ada Obi" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.CurrentUser(9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
