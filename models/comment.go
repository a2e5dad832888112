package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength bounds comment content in characters.
const MaxCommentLength = 1000

// Comment is an anonymous reply to a post. BlogID is denormalized from the
// parent post at creation time and never updated afterwards, so ownership
// checks need no join and survive the post being deleted concurrently.
type Comment struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	PostID    string    `gorm:"type:char(36);index:idx_comments_post_created;not null" json:"post_id"`
	BlogID    string    `gorm:"type:char(36);index;not null" json:"blog_id"`
	Name      string    `gorm:"size:128;default:'Anonymous'" json:"name"`
	Content   string    `gorm:"size:1000;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_created" json:"created_at"`
}

// BeforeCreate assigns a fresh identifier and ensures the timestamp is set.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}
