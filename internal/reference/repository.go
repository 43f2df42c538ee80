// Package reference manages the flat lookup vocabularies: subjects, classes,
// terms and academic sessions. Dependent rows reference these by name.
package reference

import (
	"errors"

	"cbt-portal/internal/models"

	"gorm.io/gorm"
)

// Kind selects one of the four vocabulary tables.
type Kind string

const (
	KindSubject Kind = "subject"
	KindClass   Kind = "class"
	KindTerm    Kind = "term"
	KindSession Kind = "session"
)

var ErrUnknownKind = errors.New("unknown reference kind")

// Entry is the uniform row shape returned for every vocabulary.
type Entry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(kind Kind) ([]Entry, error) {
	var entries []Entry

	var err error
	switch kind {
	case KindSubject:
		err = r.db.Model(&models.Subject{}).Order("name asc").Find(&entries).Error
	case KindClass:
		err = r.db.Model(&models.Class{}).Order("name asc").Find(&entries).Error
	case KindTerm:
		err = r.db.Model(&models.Term{}).Order("name asc").Find(&entries).Error
	case KindSession:
		err = r.db.Model(&models.Session{}).Order("name asc").Find(&entries).Error
	default:
		return nil, ErrUnknownKind
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) Create(kind Kind, name string) (*Entry, error) {
	switch kind {
	case KindSubject:
		row := models.Subject{Name: name}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, err
		}
		return &Entry{ID: row.ID, Name: row.Name}, nil
	case KindClass:
		row := models.Class{Name: name}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, err
		}
		return &Entry{ID: row.ID, Name: row.Name}, nil
	case KindTerm:
		row := models.Term{Name: name}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, err
		}
		return &Entry{ID: row.ID, Name: row.Name}, nil
	case KindSession:
		row := models.Session{Name: name}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, err
		}
		return &Entry{ID: row.ID, Name: row.Name}, nil
	}
	return nil, ErrUnknownKind
}

func (r *Repository) Delete(kind Kind, id uint) error {
	var result *gorm.DB
	switch kind {
	case KindSubject:
		result = r.db.Delete(&models.Subject{}, id)
	case KindClass:
		result = r.db.Delete(&models.Class{}, id)
	case KindTerm:
		result = r.db.Delete(&models.Term{}, id)
	case KindSession:
		result = r.db.Delete(&models.Session{}, id)
	default:
		return ErrUnknownKind
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
