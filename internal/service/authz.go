package service

import (
	"github.com/foodgram/backend/internal/models"
)

// CanModifyRecipe is the object-level authorization predicate for
// unsafe recipe operations. Reads never go through it.
func CanModifyRecipe(actor *models.User, recipe *models.Recipe) bool {
	if actor == nil || recipe == nil {
		return false
	}
	return actor.IsSuperuser || actor.IsStaff || recipe.AuthorID == actor.ID
}
