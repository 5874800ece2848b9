package models

import (
	"time"
)

// Follow is one edge in the follow graph. The composite primary key
// makes the edge unique at the storage layer; a concurrent duplicate
// insert surfaces as a key violation rather than a second edge.
// Self-edges (follower == followed) are rejected before insert.
type Follow struct {
	FollowerUsername string    `gorm:"primaryKey;type:varchar(50);column:follower_username"`
	FollowedUsername string    `gorm:"primaryKey;type:varchar(50);column:followed_username"`
	FollowedAt       time.Time `gorm:"not null;column:followed_at"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "relay_follows"
}
