package assignment

import (
	"cbt-portal/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll() ([]models.TeacherAssignment, error) {
	var assignments []models.TeacherAssignment
	err := r.db.Order("teacher_id asc, subject asc").Find(&assignments).Error
	return assignments, err
}

func (r *Repository) ListByTeacher(teacherID uint) ([]models.TeacherAssignment, error) {
	var assignments []models.TeacherAssignment
	err := r.db.Where("teacher_id = ?", teacherID).Find(&assignments).Error
	return assignments, err
}

// ReplaceForTeacher swaps a teacher's full assignment set in one
// transaction: delete-all, re-insert.
func (r *Repository) ReplaceForTeacher(teacherID uint, assignments []models.TeacherAssignment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_id = ?", teacherID).Delete(&models.TeacherAssignment{}).Error; err != nil {
			return err
		}
		if len(assignments) == 0 {
			return nil
		}
		for i := range assignments {
			assignments[i].ID = 0
			assignments[i].TeacherID = teacherID
		}
		return tx.Create(&assignments).Error
	})
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&models.TeacherAssignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasAssignment reports whether the teacher may author for the pair.
func (r *Repository) HasAssignment(teacherID uint, subject, class string) (bool, error) {
	var count int64
	err := r.db.Model(&models.TeacherAssignment{}).
		Where("teacher_id = ? AND subject = ? AND class = ?", teacherID, subject, class).
		Count(&count).Error
	return count > 0, err
}

// ListTeachers returns every teacher profile for the admin assignment UI.
func (r *Repository) ListTeachers() ([]models.Profile, error) {
	var teachers []models.Profile
	err := r.db.Where("role = ?", models.RoleTeacher).Order("full_name asc").Find(&teachers).Error
	return teachers, err
}
