package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != "" {
		username := strings.TrimSpace(update.Username)
		if len(username) < 3 || len(username) > 30 {
			return nil, invalid("username must be between 3 and 30 characters")
		}
		user.Username = username
	}
	if update.Email != "" {
		email := strings.ToLower(strings.TrimSpace(update.Email))
		if !emailPattern.MatchString(email) {
			return nil, invalid("please enter a valid email address")
		}
		user.Email = email
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
