package models

import "gorm.io/gorm"

// AllModels returns all models for migration, referenced tables first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Question{},
		&Answer{},
		&CorrectAnswer{},
		&Vote{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
