package auth

import (
	"errors"
	"strings"
	"time"

	"cbt-portal/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAdminExists        = errors.New("admin account already exists")
)

const tokenTTL = 24 * time.Hour

type Service struct {
	repo      *Repository
	jwtSecret []byte
}

func NewService(repo *Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Signup creates a User plus its role-bearing Profile. Students and teachers
// self-register; an admin can only be created while no admin exists yet.
func (s *Service) Signup(email, password, fullName, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	switch role {
	case models.RoleStudent, models.RoleTeacher:
	case models.RoleAdmin:
		count, err := s.repo.CountAdmins()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAdminExists
		}
	default:
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Profile: models.Profile{
			Role:     role,
			FullName: fullName,
		},
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signin verifies the credentials and issues a signed token carrying the
// user id and role.
func (s *Service) Signin(email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Profile.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

// CurrentUser resolves the authenticated user for the session endpoint.
func (s *Service) CurrentUser(userID uint) (*models.User, error) {
	return s.repo.GetUserByID(userID)
}
