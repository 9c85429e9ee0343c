package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TagHandler serves the read-only tag catalog.
type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tags"})
		return
	}

	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	var tag models.Tag
	if err := h.db.WithContext(c.Request.Context()).First(&tag, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "tag not found"})
		return
	}

	c.JSON(http.StatusOK, tag)
}
