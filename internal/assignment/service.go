// Package assignment manages teacher-subject authorization: which (subject,
// class) pairs a teacher may author questions for.
package assignment

import (
	"errors"
	"strings"

	"cbt-portal/internal/models"
)

var ErrEmptyPair = errors.New("subject and class are required")

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Pair is one (subject, class) authorization.
type Pair struct {
	Subject string `json:"subject"`
	Class   string `json:"class"`
}

func (s *Service) ListAll() ([]models.TeacherAssignment, error) {
	return s.repo.ListAll()
}

func (s *Service) ListByTeacher(teacherID uint) ([]models.TeacherAssignment, error) {
	return s.repo.ListByTeacher(teacherID)
}

// Save replaces the teacher's assignment set. Duplicate pairs in the input
// collapse to one row.
func (s *Service) Save(teacherID uint, pairs []Pair) ([]models.TeacherAssignment, error) {
	seen := make(map[string]bool)
	assignments := make([]models.TeacherAssignment, 0, len(pairs))
	for _, p := range pairs {
		subject := strings.TrimSpace(p.Subject)
		class := strings.TrimSpace(p.Class)
		if subject == "" || class == "" {
			return nil, ErrEmptyPair
		}
		key := subject + "\x00" + class
		if seen[key] {
			continue
		}
		seen[key] = true
		assignments = append(assignments, models.TeacherAssignment{
			TeacherID: teacherID,
			Subject:   subject,
			Class:     class,
		})
	}

	if err := s.repo.ReplaceForTeacher(teacherID, assignments); err != nil {
		return nil, err
	}
	return s.repo.ListByTeacher(teacherID)
}

func (s *Service) Delete(id uint) error {
	return s.repo.Delete(id)
}

// CanAuthor reports whether the teacher holds the (subject, class) pair.
func (s *Service) CanAuthor(teacherID uint, subject, class string) (bool, error) {
	return s.repo.HasAssignment(teacherID, subject, class)
}

func (s *Service) ListTeachers() ([]models.Profile, error) {
	return s.repo.ListTeachers()
}
