package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":      "vasya@example.com",
		"username":   "vasya",
		"first_name": "Вася",
		"last_name":  "Пупкин",
		"password":   "Qwerty123",
	}

	rec := env.request(t, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var profile map[string]interface{}
	decodeBody(t, rec, &profile)
	assert.Equal(t, "vasya@example.com", profile["email"])
	assert.Equal(t, "vasya", profile["username"])
	assert.Equal(t, false, profile["is_subscribed"])
	assert.NotContains(t, rec.Body.String(), "password")

	// Same email again is rejected.
	payload["username"] = "other"
	rec = env.request(t, http.MethodPost, "/api/users", "", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "errors")
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing email", map[string]string{
			"username": "vasya", "first_name": "a", "last_name": "b", "password": "Qwerty123",
		}},
		{"malformed email", map[string]string{
			"email": "not-an-email", "username": "vasya",
			"first_name": "a", "last_name": "b", "password": "Qwerty123",
		}},
		{"short password", map[string]string{
			"email": "vasya@example.com", "username": "vasya",
			"first_name": "a", "last_name": "b", "password": "short",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/api/users", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.newUser(t, "vasya")

	rec := env.request(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["auth_token"])

	rec = env.request(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "vasya")

	rec := env.request(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]interface{}
	decodeBody(t, rec, &profile)
	assert.EqualValues(t, user.ID, profile["id"])

	rec = env.request(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "alice")
	env.newUser(t, "bob")

	rec := env.request(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int64                    `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	decodeBody(t, rec, &body)
	assert.EqualValues(t, 2, body.Count)
	assert.Len(t, body.Results, 2)
}

func TestGetUserEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.newUser(t, "vasya")

	rec := env.request(t, http.MethodGet, "/api/users/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]interface{}
	decodeBody(t, rec, &profile)
	assert.Equal(t, user.Username, profile["username"])

	rec = env.request(t, http.MethodGet, "/api/users/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "vasya")

	rec := env.request(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/token/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
