package models

import (
	"time"
)

// Like is one row in the reaction ledger. The composite primary key is
// the uniqueness constraint: a user can hold at most one like per post,
// enforced by the storage layer, not by application-level checks.
type Like struct {
	Username string    `gorm:"primaryKey;type:varchar(50);column:username"`
	PostID   int64     `gorm:"primaryKey;column:post_id"`
	LikedAt  time.Time `gorm:"not null;column:liked_at"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "relay_likes"
}
