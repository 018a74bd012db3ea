package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

func seedUser(t *testing.T, store *memory.Store, password string, active bool) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		ID:           "u1",
		Email:        "admin@webmarcas.net",
		Username:     "admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     active,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateUser(user))
	return user
}

func TestLogin(t *testing.T) {
	t.Run("com email", func(t *testing.T) {
		store := memory.NewStore()
		seedUser(t, store, "senha-forte", true)
		svc := NewService(store)

		user, err := svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "senha-forte"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("com nome de usuário", func(t *testing.T) {
		store := memory.NewStore()
		seedUser(t, store, "senha-forte", true)
		svc := NewService(store)

		user, err := svc.Login(LoginInput{Identifier: "ADMIN", Password: "senha-forte"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("senha incorreta", func(t *testing.T) {
		store := memory.NewStore()
		seedUser(t, store, "senha-forte", true)
		svc := NewService(store)

		_, err := svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "errada"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("usuário inexistente", func(t *testing.T) {
		svc := NewService(memory.NewStore())

		_, err := svc.Login(LoginInput{Identifier: "ninguem@webmarcas.net", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("usuário desativado", func(t *testing.T) {
		store := memory.NewStore()
		seedUser(t, store, "senha-forte", false)
		svc := NewService(store)

		_, err := svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "senha-forte"})
		assert.ErrorIs(t, err, ErrUserInactive)
	})

	t.Run("login registra último acesso", func(t *testing.T) {
		store := memory.NewStore()
		seedUser(t, store, "senha-forte", true)
		svc := NewService(store)

		_, err := svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "senha-forte"})
		require.NoError(t, err)

		user, err := store.GetUserByID("u1")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})
}

func TestChangePassword(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "senha-antiga", true)
	svc := NewService(store)

	t.Run("senha atual incorreta", func(t *testing.T) {
		err := svc.ChangePassword("u1", "errada", "senha-nova-123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("senha nova curta demais", func(t *testing.T) {
		err := svc.ChangePassword("u1", "senha-antiga", "curta")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("troca bem-sucedida", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword("u1", "senha-antiga", "senha-nova-123"))

		_, err := svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "senha-nova-123"})
		assert.NoError(t, err)

		_, err = svc.Login(LoginInput{Identifier: "admin@webmarcas.net", Password: "senha-antiga"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", hash)
	assert.True(t, CheckPassword("segredo123", hash))
	assert.False(t, CheckPassword("outra", hash))
}
