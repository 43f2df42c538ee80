package result

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

// Filter narrows result queries; empty fields are ignored.
type Filter struct {
	StudentID uint
	Subject   string
	Class     string
	Term      string
	Session   string
}

func (f Filter) Empty() bool {
	return f.StudentID == 0 && f.Subject == "" && f.Class == "" && f.Term == "" && f.Session == ""
}

func (r *Repository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.StudentID != 0 {
		query = query.Where("test_results.student_id = ?", filter.StudentID)
	}
	if filter.Subject != "" {
		query = query.Where("test_results.subject = ?", filter.Subject)
	}
	if filter.Class != "" {
		query = query.Where("test_results.class = ?", filter.Class)
	}
	if filter.Term != "" {
		query = query.Where("test_results.term = ?", filter.Term)
	}
	if filter.Session != "" {
		query = query.Where("test_results.session = ?", filter.Session)
	}
	return query
}

func (r *Repository) List(filter Filter) ([]models.TestResult, error) {
	var results []models.TestResult
	query := r.applyFilter(r.db.Model(&models.TestResult{}), filter)
	err := query.Order("created_at desc").Find(&results).Error
	return results, err
}

// ResultWithStudent enriches a result row with the student's identity for
// reporting and exports.
type ResultWithStudent struct {
	models.TestResult
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

func (r *Repository) ListWithStudent(filter Filter) ([]ResultWithStudent, error) {
	var rows []ResultWithStudent
	query := r.db.Model(&models.TestResult{}).
		Select("test_results.*, profiles.full_name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = test_results.student_id").
		Joins("JOIN profiles ON profiles.user_id = users.id")
	query = r.applyFilter(query, filter)
	err := query.Order("test_results.created_at desc").Scan(&rows).Error
	return rows, err
}

// SubmitAtomically records the result and deactivates the code in one
// transaction. The conditional update doubles as the claim on the code:
// zero rows affected means the code was already used or never active, and
// the whole submission rolls back.
func (r *Repository) SubmitAtomically(result *models.TestResult) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.TestCode{}).
			Where("code = ? AND is_active = ?", result.Code, true).
			Update("is_active", false)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrCodeUnavailable
		}
		return tx.Create(result).Error
	})
}

func (r *Repository) GetCode(code string) (*models.TestCode, error) {
	var row models.TestCode
	if err := r.db.Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetQuestions loads the submitted question IDs, restricted to the code's
// (subject, class, term) and capped at its NumQuestions. IDs outside the
// code's test can never count toward the score or the possible total.
func (r *Repository) GetQuestions(ids []uint, code *models.TestCode) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("id IN ?", ids).
		Where("subject = ? AND class = ? AND term = ?", code.Subject, code.Class, code.Term).
		Limit(code.NumQuestions).
		Find(&questions).Error
	return questions, err
}
