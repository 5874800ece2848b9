package models

import (
	"time"
)

// MaxCommentLength is the content limit for a comment after trimming.
const MaxCommentLength = 500

// Comment represents a comment on a post.
type Comment struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID         int64     `gorm:"not null;index:relay_comments_post_ix;column:post_id"`
	AuthorUsername string    `gorm:"type:varchar(50);not null;column:author_username"`
	Content        string    `gorm:"type:varchar(500);not null;column:content"`
	CreatedAt      time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "relay_comments"
}
