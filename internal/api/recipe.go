package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type RecipeHandler struct {
	recipes      *service.RecipeService
	relations    *service.RelationService
	shoppingList *service.ShoppingListService
	authService  middleware.TokenValidator
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shoppingList *service.ShoppingListService,
	authService middleware.TokenValidator,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		relations:    relations,
		shoppingList: shoppingList,
		authService:  authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewerID, _ := middleware.CurrentUserID(c)

	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
	}
	filter.Page, filter.Limit = pageParams(c)
	if author := c.Query("author"); author != "" {
		if id, err := strconv.ParseUint(author, 10, 64); err == nil {
			filter.AuthorID = uint(id)
		}
	}
	if c.Query("is_favorited") == "1" && viewerID != 0 {
		filter.FavoritedBy = viewerID
	}
	if c.Query("is_in_shopping_cart") == "1" && viewerID != 0 {
		filter.InShoppingCartOf = viewerID
	}

	recipes, count, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
		return
	}

	results := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := h.buildRecipeView(c, &recipes[i], viewerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipes"})
			return
		}
		results = append(results, view)
	}

	c.JSON(http.StatusOK, gin.H{"count": count, "results": results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	viewerID, _ := middleware.CurrentUserID(c)
	view, err := h.buildRecipeView(c, recipe, viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.recipes.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	view, err := h.buildRecipeView(c, recipe, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.recipes.Update(c.Request.Context(), id, userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	view, err := h.buildRecipeView(c, recipe, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recipe"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.relations.AddFavorite(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewShortRecipe(recipe))
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.relations.RemoveFavorite(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := h.relations.AddToCart(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewShortRecipe(recipe))
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.relations.RemoveFromCart(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated ingredient list as a
// plain-text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	items, err := h.shoppingList.Build(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build shopping list"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", service.Render(items))
}

func (h *RecipeHandler) buildRecipeView(c *gin.Context, recipe *models.Recipe, viewerID uint) (RecipeView, error) {
	ctx := c.Request.Context()

	subscribed, err := h.relations.IsSubscribed(ctx, viewerID, recipe.AuthorID)
	if err != nil {
		return RecipeView{}, err
	}
	favorited, err := h.relations.IsFavorited(ctx, viewerID, recipe.ID)
	if err != nil {
		return RecipeView{}, err
	}
	inCart, err := h.relations.IsInCart(ctx, viewerID, recipe.ID)
	if err != nil {
		return RecipeView{}, err
	}

	author := NewUserProfile(&recipe.Author, subscribed)
	return NewRecipeView(recipe, author, favorited, inCart), nil
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return 0, false
	}
	return uint(id), true
}
