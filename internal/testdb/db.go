// Package testdb provides an in-memory SQLite database with the full
// application schema for service and handler tests.
package testdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

// New opens a fresh in-memory database and migrates the schema.
// TranslateError is on, matching the production configuration, so
// unique-index violations surface as gorm.ErrDuplicatedKey here too.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

// CreateUser inserts a user whose password is the given plaintext.
func CreateUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// CreateIngredient inserts one catalog entry.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

// CreateTag inserts one tag.
func CreateTag(t *testing.T, db *gorm.DB, name, slug, color string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Slug: slug, Color: color}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}
