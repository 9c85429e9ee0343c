package database

import (
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// RunMigrations brings the schema up to date. All entities carry their
// constraints (composite unique indexes, cascade foreign keys) in gorm
// tags, so AutoMigrate covers both the postgres runtime and the sqlite
// test path.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Subscription{},
	)
}
