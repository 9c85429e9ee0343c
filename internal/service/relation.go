package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// RelationService implements the idempotence-hostile toggles: each
// relation is either ABSENT or PRESENT, adding a present relation and
// removing an absent one are both rejected. Uniqueness is enforced by
// the store's unique indexes; a concurrent duplicate add loses on
// gorm.ErrDuplicatedKey, never on a check-then-insert race.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// AddFavorite marks the recipe as favorited and returns it for the
// short projection.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFavorited
		}
		return nil, err
	}
	return recipe, nil
}

// RemoveFavorite deletes exactly one favorite row. Removing a favorite
// that was never added is an error, not a no-op.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.findRecipe(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFavorited
	}
	return nil
}

// AddToCart queues the recipe for the user's shopping list.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	entry := models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInCart
		}
		return nil, err
	}
	return recipe, nil
}

// RemoveFromCart deletes exactly one shopping-cart row.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.findRecipe(ctx, recipeID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInCart
	}
	return nil
}

// Subscribe follows the author and returns their user record for the
// profile projection.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if userID == authorID {
		return nil, newValidationError("author", "you cannot subscribe to yourself")
	}

	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return author, nil
}

// Unsubscribe deletes exactly one subscription row.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// ListSubscriptions returns the authors the user follows, newest
// subscription first.
func (s *RelationService) ListSubscriptions(ctx context.Context, userID uint) ([]models.User, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.created_at DESC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// IsSubscribed reports whether user follows author. Anonymous callers
// (userID 0) are never subscribed.
func (s *RelationService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// IsFavorited reports whether user has favorited the recipe.
func (s *RelationService) IsFavorited(ctx context.Context, userID, recipeID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// IsInCart reports whether the recipe is in the user's shopping cart.
func (s *RelationService) IsInCart(ctx context.Context, userID, recipeID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s *RelationService) findRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) findUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
