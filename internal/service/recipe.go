package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

const (
	minCookingTime = 1
	maxCookingTime = 1440
	minAmount      = 1
	maxAmount      = 10000
)

// IngredientLine is one (ingredient, amount) pair of a recipe payload.
type IngredientLine struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required"`
}

// RecipeInput is the full mutation payload. Updates are full-replace:
// the submitted line and tag sets become the recipe's line and tag
// sets, nothing is merged.
type RecipeInput struct {
	Name        string           `json:"name" binding:"required"`
	Text        string           `json:"text" binding:"required"`
	Image       string           `json:"image"`
	CookingTime int              `json:"cooking_time" binding:"required"`
	Ingredients []IngredientLine `json:"ingredients"`
	Tags        []uint           `json:"tags"`
}

// RecipeFilter narrows the recipe listing.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	FavoritedBy      uint
	InShoppingCartOf uint
	Page             int
	Limit            int
}

// RecipeService validates and atomically writes recipes with their
// ingredient lines and tag associations.
type RecipeService struct {
	db     *gorm.DB
	images ImageStorage
}

func NewRecipeService(db *gorm.DB, images ImageStorage) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// Create inserts a recipe owned by authorID together with its
// ingredient lines and tag associations in one transaction. Any
// validation failure aborts before a single row is written.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	image, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	var created models.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.validate(tx, in)
		if err != nil {
			return err
		}

		created = models.Recipe{
			AuthorID:    authorID,
			Name:        in.Name,
			Text:        in.Text,
			Image:       image,
			CookingTime: in.CookingTime,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if err := s.insertLines(tx, created.ID, in.Ingredients); err != nil {
			return err
		}

		return tx.Model(&created).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, created.ID)
}

// Update replaces the entire ingredient-line set and tag set of the
// recipe and updates its scalar fields. Only the author or a
// staff/superuser actor may call it.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uint, in RecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, recipe); err != nil {
		return nil, err
	}

	image := recipe.Image
	if in.Image != "" {
		image, err = s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := s.validate(tx, in)
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := s.insertLines(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}

		return tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"image":        image,
			"cooking_time": in.CookingTime,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Delete removes the recipe and everything that hangs off it:
// ingredient lines, tag associations, favorites and cart entries.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uint) error {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, recipe); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
}

// Get retrieves a recipe with its author, tags and ingredient lines.
func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes newest first, narrowed by the filter, plus the
// total count before pagination.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if f.FavoritedBy != 0 {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", f.FavoritedBy)
	}
	if f.InShoppingCartOf != 0 {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", f.InShoppingCartOf)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
		if f.Page > 1 {
			query = query.Offset((f.Page - 1) * f.Limit)
		}
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// ListByAuthor returns an author's recipes newest first, optionally
// capped. Used by the subscription projections.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// validate checks the whole payload before anything is written and
// resolves the referenced tags.
func (s *RecipeService) validate(tx *gorm.DB, in RecipeInput) ([]models.Tag, error) {
	if in.CookingTime < minCookingTime || in.CookingTime > maxCookingTime {
		return nil, newValidationError("cooking_time",
			fmt.Sprintf("must be between %d and %d minutes", minCookingTime, maxCookingTime))
	}
	if len(in.Ingredients) == 0 {
		return nil, newValidationError("ingredients", "a recipe needs at least one ingredient")
	}

	seen := make(map[uint]struct{}, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line.Amount < minAmount || line.Amount > maxAmount {
			return nil, newValidationError("ingredients",
				fmt.Sprintf("amount must be between %d and %d", minAmount, maxAmount))
		}
		if _, dup := seen[line.ID]; dup {
			return nil, newValidationError("ingredients", "ingredients must not repeat within a recipe")
		}
		seen[line.ID] = struct{}{}

		var ingredient models.Ingredient
		if err := tx.First(&ingredient, line.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrIngredientNotFound
			}
			return nil, err
		}
	}

	var tags []models.Tag
	if len(in.Tags) > 0 {
		if err := tx.Where("id IN ?", in.Tags).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(in.Tags) {
			return nil, ErrTagNotFound
		}
	}
	return tags, nil
}

func (s *RecipeService) insertLines(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}

func (s *RecipeService) authorize(ctx context.Context, actorID uint, recipe *models.Recipe) error {
	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !CanModifyRecipe(&actor, recipe) {
		return ErrForbidden
	}
	return nil
}

// storeImage resolves the image payload. Base64 data URIs are decoded
// and pushed to the configured image storage; anything else (an
// already-hosted URL, or a data URI with no storage configured) is
// kept verbatim.
func (s *RecipeService) storeImage(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}
	data, contentType, ok := ParseDataURI(image)
	if !ok || s.images == nil {
		return image, nil
	}
	return s.images.Upload(ctx, data, contentType)
}
