// Package stats serves the admin and role-aware dashboard counters plus the
// student roster export.
package stats

import (
	"database/sql"

	"cbt-portal/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AdminStats is the portal-wide counter set.
type AdminStats struct {
	Students    int64 `json:"students"`
	Teachers    int64 `json:"teachers"`
	Questions   int64 `json:"questions"`
	Batches     int64 `json:"batches"`
	ActiveCodes int64 `json:"active_codes"`
	Results     int64 `json:"results"`
}

func (r *Repository) AdminStats() (*AdminStats, error) {
	var s AdminStats

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&s.Students, r.db.Model(&models.Profile{}).Where("role = ?", models.RoleStudent)},
		{&s.Teachers, r.db.Model(&models.Profile{}).Where("role = ?", models.RoleTeacher)},
		{&s.Questions, r.db.Model(&models.Question{})},
		{&s.Batches, r.db.Model(&models.TestCodeBatch{})},
		{&s.ActiveCodes, r.db.Model(&models.TestCode{}).Where("is_active = ?", true)},
		{&s.Results, r.db.Model(&models.TestResult{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// DashboardStats is the role-scoped view.
type DashboardStats struct {
	Questions int64    `json:"questions,omitempty"`
	Results   int64    `json:"results"`
	AvgScore  *float64 `json:"avg_score,omitempty"`
}

// TeacherDashboard counts the teacher's own question bank plus all results.
func (r *Repository) TeacherDashboard(teacherID uint) (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&models.Question{}).Where("teacher_id = ?", teacherID).Count(&s.Questions).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.TestResult{}).Count(&s.Results).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// StudentDashboard counts the student's attempts and average percentage.
func (r *Repository) StudentDashboard(studentID uint) (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&models.TestResult{}).Where("student_id = ?", studentID).Count(&s.Results).Error; err != nil {
		return nil, err
	}
	if s.Results > 0 {
		// AVG over zero rows is NULL, e.g. when every attempt was an
		// essay-only test with no auto-gradable points.
		var avg sql.NullFloat64
		err := r.db.Model(&models.TestResult{}).
			Where("student_id = ? AND total_possible_score > 0", studentID).
			Select("AVG(score * 100.0 / total_possible_score)").
			Scan(&avg).Error
		if err != nil {
			return nil, err
		}
		if avg.Valid {
			s.AvgScore = &avg.Float64
		}
	}
	return &s, nil
}

// StudentRow is one line of the roster export.
type StudentRow struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func (r *Repository) ListStudents() ([]StudentRow, error) {
	var rows []StudentRow
	err := r.db.Model(&models.Profile{}).
		Select("profiles.full_name, users.email, profiles.created_at").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.role = ?", models.RoleStudent).
		Order("profiles.full_name asc").
		Scan(&rows).Error
	return rows, err
}
