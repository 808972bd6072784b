package models

import "time"

const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is an integer score attached to a post.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     int       `gorm:"column:rating;not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
