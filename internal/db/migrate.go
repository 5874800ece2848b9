package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/CodingKingM/relay/internal/models"
)

// Migrate creates or updates the schema. The composite primary keys on
// relay_likes and relay_follows carry the uniqueness invariants.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
