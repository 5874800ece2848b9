package models

import (
	"database/sql"
	"time"
)

// User represents a registered account. The username is the primary
// identity and never changes after registration.
//
// Follow and Like relations are deliberately NOT modeled as collection
// fields here; they live in their own tables with composite keys so that
// counts can be derived by counting rows and concurrent toggles never
// fight over one aggregate.
type User struct {
	Username       string    `gorm:"primaryKey;type:varchar(50);column:username"`
	CredentialHash string    `gorm:"type:varchar(128);not null;column:credential_hash"`
	RegisteredAt   time.Time `gorm:"not null;column:registered_at"`

	// Profile fields
	FullName  sql.NullString `gorm:"type:varchar(100);column:full_name"`
	Email     sql.NullString `gorm:"type:varchar(100);column:email"`
	Biography sql.NullString `gorm:"type:varchar(500);column:biography"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "relay_users"
}
