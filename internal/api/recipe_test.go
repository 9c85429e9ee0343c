package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/testdb"
)

func TestCreateRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "author")
	flour := testdb.CreateIngredient(t, env.db, "мука", "г")
	breakfast := testdb.CreateTag(t, env.db, "Завтрак", "breakfast", "#E26C2D")

	payload := map[string]interface{}{
		"name":         "Блины",
		"text":         "Смешать и жарить",
		"cooking_time": 20,
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": 200}},
		"tags":         []uint{breakfast.ID},
	}

	rec := env.request(t, http.MethodPost, "/api/recipes", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var view map[string]interface{}
	decodeBody(t, rec, &view)
	assert.Equal(t, "Блины", view["name"])
	assert.Equal(t, false, view["is_favorited"])
	assert.Len(t, view["ingredients"], 1)
	assert.Len(t, view["tags"], 1)

	// Anonymous writes are rejected.
	rec = env.request(t, http.MethodPost, "/api/recipes", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Out-of-range cooking time is a validation error.
	payload["cooking_time"] = 2000
	rec = env.request(t, http.MethodPost, "/api/recipes", token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "errors")
}

func TestGetRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.newUser(t, "author")
	recipe := env.newRecipe(t, author.ID, "Блины")

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipe.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	decodeBody(t, rec, &view)
	assert.Equal(t, "Блины", view["name"])
	authorView := view["author"].(map[string]interface{})
	assert.Equal(t, "author", authorView["username"])
	assert.Equal(t, false, view["is_favorited"])
	assert.Equal(t, false, view["is_in_shopping_cart"])

	rec = env.request(t, http.MethodGet, "/api/recipes/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRecipeEndpointPermissions(t *testing.T) {
	env := newTestEnv(t)
	author, authorToken := env.newUser(t, "author")
	_, strangerToken := env.newUser(t, "stranger")
	recipe := env.newRecipe(t, author.ID, "Блины")
	flour := testdb.CreateIngredient(t, env.db, "мука", "г")

	payload := map[string]interface{}{
		"name":         "Оладьи",
		"text":         "Новый текст",
		"cooking_time": 25,
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": 300}},
	}
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	rec := env.request(t, http.MethodPatch, path, strangerToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")

	rec = env.request(t, http.MethodPatch, path, authorToken, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	decodeBody(t, rec, &view)
	assert.Equal(t, "Оладьи", view["name"])
}

func TestDeleteRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, authorToken := env.newUser(t, "author")
	_, strangerToken := env.newUser(t, "stranger")
	recipe := env.newRecipe(t, author.ID, "Блины")
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	rec := env.request(t, http.MethodDelete, path, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodDelete, path, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.newUser(t, "author")
	_, fanToken := env.newUser(t, "fan")
	recipe := env.newRecipe(t, author.ID, "Блины")
	path := fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID)

	rec := env.request(t, http.MethodPost, path, fanToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The toggle answers with the short projection only.
	var short map[string]interface{}
	decodeBody(t, rec, &short)
	assert.Equal(t, "Блины", short["name"])
	assert.NotContains(t, short, "text")
	assert.NotContains(t, short, "author")

	rec = env.request(t, http.MethodPost, path, fanToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "errors")

	rec = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Removing a favorite that is no longer there is an error.
	rec = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/recipes/999/favorite", fanToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShoppingCartEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.newUser(t, "author")
	_, buyerToken := env.newUser(t, "buyer")
	recipe := env.newRecipe(t, author.ID, "Блины")
	path := fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID)

	rec := env.request(t, http.MethodPost, path, buyerToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, path, buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodDelete, path, buyerToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodDelete, path, buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadShoppingCartEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.newUser(t, "author")
	_, buyerToken := env.newUser(t, "buyer")
	recipe := env.newRecipe(t, author.ID, "Блины")

	rec := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), buyerToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/recipes/download_shopping_cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="shopping_cart.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "Список покупок:")
	assert.Contains(t, rec.Body.String(), "Блины ингредиент - 100г;")

	rec = env.request(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRecipesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.newUser(t, "author")
	other, _ := env.newUser(t, "other")
	env.newRecipe(t, author.ID, "Блины")
	env.newRecipe(t, other.ID, "Суп")

	rec := env.request(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int64                    `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	decodeBody(t, rec, &body)
	assert.EqualValues(t, 2, body.Count)
	assert.Len(t, body.Results, 2)

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/recipes?author=%d", author.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	assert.EqualValues(t, 1, body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Блины", body.Results[0]["name"])
}

func TestListIngredientsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	testdb.CreateIngredient(t, env.db, "абрикос", "г")
	testdb.CreateIngredient(t, env.db, "авокадо", "шт.")
	testdb.CreateIngredient(t, env.db, "базилик", "г")

	rec := env.request(t, http.MethodGet, "/api/ingredients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all []map[string]interface{}
	decodeBody(t, rec, &all)
	assert.Len(t, all, 3)

	rec = env.request(t, http.MethodGet, "/api/ingredients?name=%D0%B0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var filtered []map[string]interface{}
	decodeBody(t, rec, &filtered)
	assert.Len(t, filtered, 2)

	rec = env.request(t, http.MethodGet, "/api/ingredients/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTagsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	tag := testdb.CreateTag(t, env.db, "Завтрак", "breakfast", "#E26C2D")

	rec := env.request(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tags []map[string]interface{}
	decodeBody(t, rec, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0]["slug"])

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/tags/%d", tag.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/tags/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
