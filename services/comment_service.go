package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
)

// CommentService stores comments on posts.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService bound to db.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// AddComment attaches text to a post on behalf of a user. Both must exist.
func (s *CommentService) AddComment(ctx context.Context, text string, postID, userID uint) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "comment cannot be empty")
	}

	comment := models.Comment{Text: text, PostID: postID, UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.First(&comment.User, userID).Error; err != nil {
			return notFound(err)
		}
		return tx.Omit("User").Create(&comment).Error
	})
	if err == ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("add comment to post %d: %w", postID, err)
	}
	return &comment, nil
}
