package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.AppConfig{
		DBDriver:     "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "blog.db"),
		LogLevel:     "silent",
	}
	db, err := config.InitDatabase(cfg, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustRegister(t *testing.T, auth *AuthService, username string) *models.User {
	t.Helper()
	user, err := auth.Register(context.Background(), username, "secret-password")
	require.NoError(t, err)
	return user
}

func mustCreatePost(t *testing.T, posts *PostService, description string) *models.Post {
	t.Helper()
	post, err := posts.CreatePost(context.Background(), description, "body of "+description)
	require.NoError(t, err)
	return post
}
