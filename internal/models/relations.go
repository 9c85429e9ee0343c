package models

import (
	"time"
)

// Favorite marks a recipe as favorited by a user. Uniqueness of the
// (user, recipe) pair is enforced by the store, not by the application.
type Favorite struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCart marks a recipe as queued for the user's shopping list.
type ShoppingCart struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

// Subscription follows an author. Self-subscription is rejected before
// the row is written.
type Subscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_user_author;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
