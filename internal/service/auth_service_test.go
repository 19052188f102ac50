package service

import (
	"testing"

	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", model.RoleTeller)
	svc := NewAuthService(repository.NewUserRepo(db))

	t.Run("valid credentials", func(t *testing.T) {
		response, err := svc.Login("alice", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "alice", response.User.Username)
		assert.Equal(t, model.RoleTeller, response.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("alice", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login("bob", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := seedUser(t, db, "carol", model.RoleAdmin)
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		_, err := svc.Login("carol", "secret123")
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}

func TestLogin_SingleSession(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", model.RoleTeller)
	svc := NewAuthService(repository.NewUserRepo(db))

	first, err := svc.Login("alice", "secret123")
	require.NoError(t, err)

	// First token is valid until a second login rotates the token version.
	_, err = svc.ValidateToken(first.Token)
	require.NoError(t, err)

	second, err := svc.Login("alice", "secret123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(first.Token)
	assert.Error(t, err)

	validated, err := svc.ValidateToken(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", validated.User.Username)
}

func TestResetPassword(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice", model.RoleTeller)
	svc := NewAuthService(repository.NewUserRepo(db))

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ResetPassword("alice", "nope", "newsecret")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("changes the password", func(t *testing.T) {
		require.NoError(t, svc.ResetPassword("alice", "secret123", "newsecret"))

		_, err := svc.Login("alice", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login("alice", "newsecret")
		assert.NoError(t, err)
	})
}

func TestUserService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepo(db))

	created, err := svc.CreateUser(&CreateUserRequest{Username: "teller1", Password: "secret123", Role: model.RoleTeller}, "admin")
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserRequest{Username: "teller1", Password: "secret123", Role: model.RoleTeller}, "admin")
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserRequest{Username: "x", Password: "secret123", Role: "manager"}, "admin")
		assert.Error(t, err)
	})

	t.Run("deactivate", func(t *testing.T) {
		inactive := false
		updated, err := svc.UpdateUser(created.ID, &UpdateUserRequest{IsActive: &inactive}, "admin")
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(created.ID))
		_, err := svc.GetUserByID(created.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
