package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the relation toggles and mutation authorization.
// Handlers translate these to wire statuses: ErrForbidden to 403,
// entity lookups to 404, everything else to a 400 with an errors body.
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")

	ErrForbidden = errors.New("you do not have permission to perform this action")

	ErrAlreadyFavorited  = errors.New("recipe is already in favorites")
	ErrAlreadyInCart     = errors.New("recipe is already in the shopping cart")
	ErrAlreadySubscribed = errors.New("you are already subscribed to this user")
	ErrNotFavorited      = errors.New("recipe is not in favorites")
	ErrNotInCart         = errors.New("recipe is not in the shopping cart")
	ErrNotSubscribed     = errors.New("you are not subscribed to this user")
)

// ValidationError reports malformed or out-of-range input. All
// validation happens before any row is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
