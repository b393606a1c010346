package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
	"github.com/NzamaE/Footprint-Logger-Fullstack/utils"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

// Register validates the credentials and creates the user. Uniqueness is
// checked before the insert so the caller gets a field-level message instead
// of a driver error.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < 3 || len(username) > 30 {
		return nil, invalid("username must be between 3 and 30 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, invalid("please enter a valid email address")
	}
	if len(password) < 6 {
		return nil, invalid("password must be at least 6 characters long")
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&existing).Error
	if err == nil {
		if existing.Email == email {
			return nil, invalid("email already in use")
		}
		return nil, invalid("username already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     "user",
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The pre-check can lose a race against a concurrent registration;
		// the unique indexes have the final word.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("email or username already in use")
		}
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and mints a bearer token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
