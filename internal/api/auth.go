package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	relations   *service.RelationService
}

func NewAuthHandler(authService *service.AuthService, relations *service.RelationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		relations:   relations,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
	}

	auth := router.Group("/auth/token")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserProfile(user, false))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUserProfile(user, false))
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid user id"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	viewerID, _ := middleware.CurrentUserID(c)
	subscribed, err := h.relations.IsSubscribed(c.Request.Context(), viewerID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, NewUserProfile(user, subscribed))
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	users, count, err := h.authService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	viewerID, _ := middleware.CurrentUserID(c)
	results := make([]UserProfile, 0, len(users))
	for i := range users {
		subscribed, err := h.relations.IsSubscribed(c.Request.Context(), viewerID, users[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		results = append(results, NewUserProfile(&users[i], subscribed))
	}

	c.JSON(http.StatusOK, gin.H{"count": count, "results": results})
}
