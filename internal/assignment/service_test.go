package assignment

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cbt-portal/internal/models"

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

func TestSaveReplacesAssignments(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)))

	first, err := svc.Save(7, []Pair{
		{Subject: "Mathematics", Class: "JSS1"},
		{Subject: "Mathematics", Class: "JSS2"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(first))
	}

	// A later save is a full replacement, not an append.
	second, err := svc.Save(7, []Pair{{Subject: "Physics", Class: "SS1"}})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(second) != 1 || second[0].Subject != "Physics" || second[0].Class != "SS1" {
		t.Fatalf("assignments not replaced: %+v", second)
	}
}

func TestSaveDeduplicatesAndTrims(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)))

	got, err := svc.Save(7, []Pair{
		{Subject: " Mathematics ", Class: "JSS1"},
		{Subject: "Mathematics", Class: " JSS1 "},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("duplicate pairs must collapse, got %d rows", len(got))
	}
	if got[0].Subject != "Mathematics" || got[0].Class != "JSS1" {
		t.Fatalf("pair not trimmed: %+v", got[0])
	}
}

func TestSaveRejectsEmptyPair(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)))

	if _, err := svc.Save(7, []Pair{{Subject: "", Class: "JSS1"}}); !errors.Is(err, ErrEmptyPair) {
		t.Fatalf("expected ErrEmptyPair, got %v", err)
	}
	if _, err := svc.Save(7, []Pair{{Subject: "Mathematics", Class: "  "}}); !errors.Is(err, ErrEmptyPair) {
		t.Fatalf("expected ErrEmptyPair for blank class, got %v", err)
	}
}

func TestCanAuthor(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)))

	if _, err := svc.Save(7, []Pair{{Subject: "Mathematics", Class: "JSS1"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	tests := []struct {
		name      string
		teacherID uint
		subject   string
		class     string
		want      bool
	}{
		{name: "held pair", teacherID: 7, subject: "Mathematics", class: "JSS1", want: true},
		{name: "other class", teacherID: 7, subject: "Mathematics", class: "JSS2", want: false},
		{name: "other subject", teacherID: 7, subject: "Physics", class: "JSS1", want: false},
		{name: "other teacher", teacherID: 8, subject: "Mathematics", class: "JSS1", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanAuthor(tc.teacherID, tc.subject, tc.class)
			if err != nil {
				t.Fatalf("CanAuthor: %v", err)
			}
			if got != tc.want {
				t.Fatalf("CanAuthor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeleteSingleAssignment(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)))

	rows, err := svc.Save(7, []Pair{
		{Subject: "Mathematics", Class: "JSS1"},
		{Subject: "Physics", Class: "SS1"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.Delete(rows[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	left, err := svc.ListByTeacher(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].ID == rows[0].ID {
		t.Fatalf("assignment not deleted: %+v", left)
	}
}

func TestListTeachers(t *testing.T) {
	db := setupDB(t)
	svc := NewService(NewRepository(db))

	seed := []models.Profile{
		{UserID: 1, Role: models.RoleTeacher, FullName: "T One"},
		{UserID: 2, Role: models.RoleStudent, FullName: "S One"},
		{UserID: 3, Role: models.RoleTeacher, FullName: "T Two"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}

	teachers, err := svc.ListTeachers()
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(teachers) != 2 {
		t.Fatalf("expected 2 teachers, got %d", len(teachers))
	}
	for _, p := range teachers {
		if p.Role != models.RoleTeacher {
			t.Fatalf("non-teacher in list: %+v", p)
		}
	}
}
