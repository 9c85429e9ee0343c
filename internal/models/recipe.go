package models

import (
	"time"
)

// Recipe is owned by its author. PubDate is set once at creation and
// never updated; listing order is newest first.
type Recipe struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	Image       string             `gorm:"size:255" json:"image"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one ingredient line of a recipe. A recipe cannot
// list the same ingredient twice; the line set is fully replaced on
// every recipe update.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null" json:"amount"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
