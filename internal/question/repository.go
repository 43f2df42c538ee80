package question

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

func (r *Repository) Create(q *models.Question) error {
	return r.db.Create(q).Error
}

func (r *Repository) CreateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

func (r *Repository) GetByID(id uint) (*models.Question, error) {
	var q models.Question
	if err := r.db.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *Repository) Update(q *models.Question) error {
	return r.db.Save(q).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter narrows List results; zero values are ignored.
type ListFilter struct {
	TeacherID uint
	Subject   string
	Class     string
	Term      string
}

func (r *Repository) List(filter ListFilter) ([]models.Question, error) {
	query := r.db.Model(&models.Question{})
	if filter.TeacherID != 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}
	if filter.Term != "" {
		query = query.Where("term = ?", filter.Term)
	}

	var questions []models.Question
	err := query.Order("created_at desc").Find(&questions).Error
	return questions, err
}

// SampleForTest pulls up to limit random questions matching the code's
// (subject, class, term). Sampling is unseeded; repeated starts on the same
// code draw different subsets.
func (r *Repository) SampleForTest(subject, class, term string, limit int) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("subject = ? AND class = ? AND term = ?", subject, class, term).
		Order("RANDOM()").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}
