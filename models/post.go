package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post belongs to exactly one blog. Category, when set, must be a member of
// the blog's category set at creation/update time. Likes is a plain counter
// incremented by anonymous visitors.
type Post struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	BlogID    string    `gorm:"type:char(36);index:idx_posts_blog_created;not null" json:"blog_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Excerpt   string    `gorm:"type:text" json:"excerpt"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"size:64" json:"category"`
	ImageURL  string    `gorm:"size:1024" json:"image_url"`
	Author    string    `gorm:"size:128;default:'Admin'" json:"author"`
	Likes     int64     `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index:idx_posts_blog_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier and ensures timestamps are set.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (p *Post) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}
