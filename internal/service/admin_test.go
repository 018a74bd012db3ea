package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

func newAdminService(t *testing.T) (*AdminService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewAdminService(store, nil), store
}

func TestCreateUser(t *testing.T) {
	t.Run("cadastra usuário com senha protegida", func(t *testing.T) {
		svc, store := newAdminService(t)

		user, err := svc.CreateUser(context.Background(), CreateUserInput{
			Email:    "Admin@Example.com",
			Username: "admin",
			Password: "senha-forte",
			Role:     domain.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.True(t, user.IsActive)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("senha-forte")))

		saved, err := store.GetUserByEmail("admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, saved.ID)
	})

	t.Run("papel vazio assume user", func(t *testing.T) {
		svc, _ := newAdminService(t)

		user, err := svc.CreateUser(context.Background(), CreateUserInput{
			Email:    "operador@example.com",
			Username: "operador",
			Password: "senha-forte",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, user.Role)
	})

	t.Run("senha curta é rejeitada", func(t *testing.T) {
		svc, _ := newAdminService(t)

		_, err := svc.CreateUser(context.Background(), CreateUserInput{
			Email:    "curta@example.com",
			Username: "curta",
			Password: "1234567",
		})
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("papel desconhecido é rejeitado", func(t *testing.T) {
		svc, _ := newAdminService(t)

		_, err := svc.CreateUser(context.Background(), CreateUserInput{
			Email:    "papel@example.com",
			Username: "papel",
			Password: "senha-forte",
			Role:     domain.UserRole("gerente"),
		})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("email repetido devolve conflito", func(t *testing.T) {
		svc, _ := newAdminService(t)
		ctx := context.Background()

		input := CreateUserInput{
			Email:    "repetido@example.com",
			Username: "primeiro",
			Password: "senha-forte",
		}
		_, err := svc.CreateUser(ctx, input)
		require.NoError(t, err)

		input.Username = "segundo"
		_, err = svc.CreateUser(ctx, input)
		assert.ErrorIs(t, err, ErrEmailInUse)
	})
}

func TestSetUserActive(t *testing.T) {
	t.Run("desativa e reativa o usuário", func(t *testing.T) {
		svc, store := newAdminService(t)
		ctx := context.Background()

		user, err := svc.CreateUser(ctx, CreateUserInput{
			Email:    "ativo@example.com",
			Username: "ativo",
			Password: "senha-forte",
		})
		require.NoError(t, err)

		require.NoError(t, svc.SetUserActive(ctx, user.ID, false))
		saved, err := store.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.False(t, saved.IsActive)

		require.NoError(t, svc.SetUserActive(ctx, user.ID, true))
		saved, err = store.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.True(t, saved.IsActive)
	})

	t.Run("usuário inexistente propaga não encontrado", func(t *testing.T) {
		svc, _ := newAdminService(t)
		err := svc.SetUserActive(context.Background(), "inexistente", false)
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestListUsers(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Email:    email,
			Username: email,
			Password: "senha-forte",
		})
		require.NoError(t, err)
	}

	users, total, err := svc.ListUsers(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)

	users, total, err = svc.ListUsers(ctx, 1, 10, "b@")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "b@example.com", users[0].Email)
}
