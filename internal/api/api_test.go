package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testdb"
)

// testEnv wires the full route table over an in-memory database.
type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	recipes *service.RecipeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.New(t)
	authService := service.NewAuthService(db, nil, "test-secret")
	recipeService := service.NewRecipeService(db, nil)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService, relationService),
		api.NewRecipeHandler(recipeService, relationService, shoppingListService, authService),
		api.NewSubscriptionHandler(relationService, recipeService, authService),
		api.NewIngredientHandler(db),
		api.NewTagHandler(db),
	)

	return &testEnv{
		router:  engine,
		db:      db,
		auth:    authService,
		recipes: recipeService,
	}
}

// newUser seeds a user and returns it with a valid bearer token.
func (e *testEnv) newUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := testdb.CreateUser(t, e.db, username, "password123")
	token, err := e.auth.Login(context.Background(), user.Email, "password123")
	require.NoError(t, err)
	return user, token
}

// newRecipe seeds a recipe for the author with one ingredient line.
func (e *testEnv) newRecipe(t *testing.T, authorID uint, name string) *models.Recipe {
	t.Helper()

	ingredient := testdb.CreateIngredient(t, e.db, name+" ингредиент", "г")
	recipe, err := e.recipes.Create(context.Background(), authorID, service.RecipeInput{
		Name:        name,
		Text:        "text",
		CookingTime: 10,
		Ingredients: []service.IngredientLine{{ID: ingredient.ID, Amount: 100}},
	})
	require.NoError(t, err)
	return recipe
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
