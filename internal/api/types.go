package api

import (
	"github.com/foodgram/backend/internal/models"
)

// ShortRecipe is the minimal recipe representation used in toggle
// responses and subscription listings.
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CookingTime int    `json:"cooking_time"`
	Image       string `json:"image"`
}

func NewShortRecipe(r *models.Recipe) ShortRecipe {
	return ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		CookingTime: r.CookingTime,
		Image:       r.Image,
	}
}

// UserProfile is the user representation with the viewer-dependent
// is_subscribed flag.
type UserProfile struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUserProfile(u *models.User, isSubscribed bool) UserProfile {
	return UserProfile{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// AuthorProfile extends UserProfile with the author's recipes for
// subscription responses.
type AuthorProfile struct {
	UserProfile
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// RecipeIngredientView is one ingredient line in a recipe projection.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe projection.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []models.Tag           `json:"tags"`
	Author           UserProfile            `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

func NewRecipeView(r *models.Recipe, author UserProfile, isFavorited, isInCart bool) RecipeView {
	ingredients := make([]RecipeIngredientView, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}
