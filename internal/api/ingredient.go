package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// IngredientHandler serves the read-only ingredient catalog. Public,
// unpaginated, with a case-insensitive name-prefix filter.
type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("name")

	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(name)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ingredients"})
		return
	}

	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	var ingredient models.Ingredient
	if err := h.db.WithContext(c.Request.Context()).First(&ingredient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "ingredient not found"})
		return
	}

	c.JSON(http.StatusOK, ingredient)
}
