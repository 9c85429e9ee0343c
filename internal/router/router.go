package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/api"
)

// SetupRouter configures the application routes.
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	subscriptionHandler *api.SubscriptionHandler,
	ingredientHandler *api.IngredientHandler,
	tagHandler *api.TagHandler,
) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	root := router.Group("/api")

	// Subscription routes must be registered before the plain /users
	// routes so /users/subscriptions wins over /users/:id.
	subscriptionHandler.RegisterRoutes(root)
	authHandler.RegisterRoutes(root)
	recipeHandler.RegisterRoutes(root)
	ingredientHandler.RegisterRoutes(root)
	tagHandler.RegisterRoutes(root)

	return router
}
