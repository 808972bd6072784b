package models

import "time"

// DescriptionMaxLen bounds Post.Description in runes.
const DescriptionMaxLen = 30

// Post is an article with a short description and a body text.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:30;not null" json:"description"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	Ratings     []Rating  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
