package auth

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

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Profile").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Profile").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user and its profile together.
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// CountAdmins counts existing admin profiles; used for the bootstrap rule.
func (r *Repository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("role = ?", models.RoleAdmin).Count(&count).Error
	return count, err
}
