package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
)

// RatingService stores ratings on posts.
type RatingService struct {
	db *gorm.DB
}

// NewRatingService creates a RatingService bound to db.
func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// AddRating records a score between RatingMin and RatingMax for an existing post.
func (s *RatingService) AddRating(ctx context.Context, value int, postID uint) (*models.Rating, error) {
	if value < models.RatingMin || value > models.RatingMax {
		return nil, invalid("rating", fmt.Sprintf("rating must be between %d and %d", models.RatingMin, models.RatingMax))
	}

	rating := models.Rating{Value: value, PostID: postID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return notFound(err)
		}
		return tx.Create(&rating).Error
	})
	if err == ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("add rating to post %d: %w", postID, err)
	}
	return &rating, nil
}
