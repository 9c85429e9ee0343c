package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testdb"
)

func TestRegister(t *testing.T) {
	db := testdb.New(t)
	auth := service.NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	user, err := auth.Register(ctx, service.RegisterInput{
		Email:     "vasya@example.com",
		Username:  "vasya",
		FirstName: "Вася",
		LastName:  "Пупкин",
		Password:  "Qwerty123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Qwerty123")))

	_, err = auth.Register(ctx, service.RegisterInput{
		Email:    "vasya@example.com",
		Username: "other",
		Password: "Qwerty123",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = auth.Register(ctx, service.RegisterInput{
		Email:    "other@example.com",
		Username: "vasya",
		Password: "Qwerty123",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = auth.Register(ctx, service.RegisterInput{Username: "nobody", Password: "Qwerty123"})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoginAndValidate(t *testing.T) {
	db := testdb.New(t)
	auth := service.NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	user, err := auth.Register(ctx, service.RegisterInput{
		Email:    "vasya@example.com",
		Username: "vasya",
		Password: "Qwerty123",
	})
	require.NoError(t, err)

	_, err = auth.Login(ctx, "vasya@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", "Qwerty123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	token, err := auth.Login(ctx, "vasya@example.com", "Qwerty123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.TokenID)

	_, err = auth.ValidateToken(ctx, "not-a-token")
	assert.Error(t, err)

	// A token signed with a different secret is rejected.
	other := service.NewAuthService(db, nil, "other-secret")
	_, err = other.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestLogoutWithoutRedis(t *testing.T) {
	db := testdb.New(t)
	auth := service.NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{
		Email:    "vasya@example.com",
		Username: "vasya",
		Password: "Qwerty123",
	})
	require.NoError(t, err)

	token, err := auth.Login(ctx, "vasya@example.com", "Qwerty123")
	require.NoError(t, err)

	// Without a denylist backend logout degrades to a client-side drop.
	require.NoError(t, auth.Logout(ctx, token))
	_, err = auth.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestGetAndListUsers(t *testing.T) {
	db := testdb.New(t)
	auth := service.NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := auth.GetUser(ctx, 42)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	for _, name := range []string{"alice", "bob", "carol"} {
		testdb.CreateUser(t, db, name, "password123")
	}

	users, count, err := auth.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	users, _, err = auth.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)
}
