package models

import (
	"time"
)

// MaxPostLength is the content limit for a post after trimming.
const MaxPostLength = 280

// Post represents a short post authored by a user.
type Post struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorUsername string    `gorm:"type:varchar(50);not null;index:relay_posts_author_ix;column:author_username"`
	Content        string    `gorm:"type:varchar(280);not null;column:content"`
	CreatedAt      time.Time `gorm:"not null;index:relay_posts_created_ix;column:created_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "relay_posts"
}
