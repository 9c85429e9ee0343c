package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type SubscriptionHandler struct {
	relations   *service.RelationService
	recipes     *service.RecipeService
	authService middleware.TokenValidator
}

func NewSubscriptionHandler(
	relations *service.RelationService,
	recipes *service.RecipeService,
	authService middleware.TokenValidator,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		relations:   relations,
		recipes:     recipes,
		authService: authService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware(h.authService))
	{
		users.GET("/subscriptions", h.ListSubscriptions)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	authorID, ok := userID(c)
	if !ok {
		return
	}

	callerID, _ := middleware.CurrentUserID(c)
	author, err := h.relations.Subscribe(c.Request.Context(), callerID, authorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	profile, err := h.buildAuthorProfile(c, author, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := userID(c)
	if !ok {
		return
	}

	callerID, _ := middleware.CurrentUserID(c)
	if err := h.relations.Unsubscribe(c.Request.Context(), callerID, authorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	callerID, _ := middleware.CurrentUserID(c)

	authors, err := h.relations.ListSubscriptions(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	results := make([]AuthorProfile, 0, len(authors))
	for i := range authors {
		profile, err := h.buildAuthorProfile(c, &authors[i], true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		results = append(results, profile)
	}

	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

// buildAuthorProfile assembles the subscription projection: the author
// with their recipe count and a recipes_limit-capped recipe list.
func (h *SubscriptionHandler) buildAuthorProfile(c *gin.Context, author *models.User, isSubscribed bool) (AuthorProfile, error) {
	limit := 0
	if raw := c.Query("recipes_limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recipes, count, err := h.recipes.ListByAuthor(c.Request.Context(), author.ID, limit)
	if err != nil {
		return AuthorProfile{}, err
	}

	short := make([]ShortRecipe, 0, len(recipes))
	for i := range recipes {
		short = append(short, NewShortRecipe(&recipes[i]))
	}

	return AuthorProfile{
		UserProfile:  NewUserProfile(author, isSubscribed),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return 0, false
	}
	return uint(id), true
}
