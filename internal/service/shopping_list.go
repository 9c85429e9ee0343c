package service

import (
	"bytes"
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// ShoppingListItem is one aggregated line of the report.
type ShoppingListItem struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Unit   string `json:"measurement_unit"`
}

// ShoppingListService aggregates ingredient amounts across all recipes
// in a user's shopping cart. Read-only; reflects store state at call
// time.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build sums amounts per ingredient over the user's cart recipes.
// Grouping by ingredient id is sufficient: (name, unit) is unique in
// the ingredient catalog, so no two ids report under the same label.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, SUM(recipe_ingredients.amount) AS amount, ingredients.measurement_unit AS unit").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Render formats the aggregated list as the plain-text attachment body.
func Render(items []ShoppingListItem) []byte {
	var buf bytes.Buffer
	buf.WriteString("Список покупок:\n")
	for _, item := range items {
		fmt.Fprintf(&buf, "%s - %d%s;\n", item.Name, item.Amount, item.Unit)
	}
	return buf.Bytes()
}
