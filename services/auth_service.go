package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

const (
	usernameMaxLen = 80
	// bcrypt ignores input past 72 bytes
	passwordMaxBytes = 72
)

// AuthService registers users and verifies their credentials.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates an AuthService bound to db.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "username cannot be empty")
	}
	if utf8.RuneCountInString(username) > usernameMaxLen {
		return nil, invalid("username", fmt.Sprintf("username must be at most %d characters", usernameMaxLen))
	}
	if password == "" {
		return nil, invalid("password", "password cannot be empty")
	}
	if len(password) > passwordMaxBytes {
		return nil, invalid("password", fmt.Sprintf("password must be at most %d bytes", passwordMaxBytes))
	}

	if _, err := s.FindByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// a concurrent registration can still win the race to the unique index
		if isDuplicateKey(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate returns the user whose username and password match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrAuthFailure
	}
	return user, nil
}

// FindByUsername looks a user up by exact username through its unique index.
func (s *AuthService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &user, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}
