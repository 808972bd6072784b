package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
)

// PostService implements post CRUD and the post detail aggregation.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService bound to db.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostDetail is a post joined with its comments and the mean of its ratings.
// AverageRating is nil when the post has no ratings.
type PostDetail struct {
	Post          models.Post      `json:"post"`
	Comments      []models.Comment `json:"comments"`
	RatingCount   int              `json:"rating_count"`
	AverageRating *float64         `json:"average_rating"`
}

// CreatePost inserts a post and returns it with its new ID.
func (s *PostService) CreatePost(ctx context.Context, description, text string) (*models.Post, error) {
	description, text = strings.TrimSpace(description), strings.TrimSpace(text)
	if err := validatePost(description, text); err != nil {
		return nil, err
	}

	post := models.Post{Description: description, Text: text}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// GetPost loads a single post.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

// ListPosts returns every post ordered by ID.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes a post together with its comments and ratings.
// It reports false when no post with that ID exists.
func (s *PostService) DeletePost(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}
	return deleted, nil
}

// UpdatePost replaces the description of a post.
func (s *PostService) UpdatePost(ctx context.Context, id uint, description string) error {
	description = strings.TrimSpace(description)
	if err := validateDescription(description); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("description", description)
	if res.Error != nil {
		return fmt.Errorf("update post %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 affected rows for an unchanged value, so confirm the row is really gone
		if _, err := s.GetPost(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// EditPost replaces both the description and the text of a post.
func (s *PostService) EditPost(ctx context.Context, id uint, description, text string) (*models.Post, error) {
	description, text = strings.TrimSpace(description), strings.TrimSpace(text)
	if err := validatePost(description, text); err != nil {
		return nil, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err)
		}
		post.Description = description
		post.Text = text
		return tx.Save(&post).Error
	})
	if err == ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("edit post %d: %w", id, err)
	}
	return &post, nil
}

// GetPostDetail loads a post with its comments (insertion order, authors preloaded)
// and its ratings, and computes the average rating.
func (s *PostService) GetPostDetail(ctx context.Context, id uint) (*PostDetail, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.id") }).
		Preload("Comments.User").
		Preload("Ratings").
		First(&post, id).Error
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get post detail %d: %w", id, err)
	}

	comments := post.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	detail := &PostDetail{
		Post:          post,
		Comments:      comments,
		RatingCount:   len(post.Ratings),
		AverageRating: AverageRating(post.Ratings),
	}
	detail.Post.Comments = nil
	detail.Post.Ratings = nil
	return detail, nil
}

// AverageRating returns the arithmetic mean of the rating values, or nil for an empty set.
func AverageRating(ratings []models.Rating) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg
}

func validatePost(description, text string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	if text == "" {
		return invalid("text", "text cannot be empty")
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return invalid("description", "description cannot be empty")
	}
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return invalid("description", fmt.Sprintf("description must be at most %d characters", models.DescriptionMaxLen))
	}
	return nil
}
