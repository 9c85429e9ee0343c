package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// respondServiceError maps service errors to wire statuses. Relation
// toggles report both conflicts and removals of absent relations as
// 400 with an "errors" body; clients distinguish them by message.
func respondServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Error()})
		return
	}

	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrIngredientNotFound),
		errors.Is(err, service.ErrTagNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrAlreadyInCart),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrNotInCart),
		errors.Is(err, service.ErrNotSubscribed):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
