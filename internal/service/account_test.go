package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

func newAccountService(t *testing.T) (*MailAccountService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewMailAccountService(store, nil), store
}

func validAccountInput() MailAccountInput {
	return MailAccountInput{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "contratos@example.com",
		Password: "segredo",
		FromName: "Webmarcas Contratos",
	}
}

func TestCreateMailAccount(t *testing.T) {
	t.Run("primeira conta cadastrada vira padrão", func(t *testing.T) {
		svc, _ := newAccountService(t)

		account, err := svc.Create(context.Background(), validAccountInput())
		require.NoError(t, err)
		assert.True(t, account.IsDefault)
		assert.NotEmpty(t, account.ID)
	})

	t.Run("segunda conta não herda a marcação de padrão", func(t *testing.T) {
		svc, _ := newAccountService(t)

		_, err := svc.Create(context.Background(), validAccountInput())
		require.NoError(t, err)

		input := validAccountInput()
		input.Username = "cobranca@example.com"
		second, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, second.IsDefault)
	})

	t.Run("porta zero assume 587", func(t *testing.T) {
		svc, _ := newAccountService(t)

		input := validAccountInput()
		input.Port = 0
		account, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 587, account.Port)
	})

	t.Run("host ausente é rejeitado", func(t *testing.T) {
		svc, _ := newAccountService(t)

		input := validAccountInput()
		input.Host = "  "
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrAccountInvalid)
	})

	t.Run("usuário que não é email é rejeitado", func(t *testing.T) {
		svc, _ := newAccountService(t)

		input := validAccountInput()
		input.Username = "sem-arroba"
		_, err := svc.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrAccountInvalid)
	})
}

func TestUpdateMailAccount(t *testing.T) {
	t.Run("edita os dados da conta", func(t *testing.T) {
		svc, _ := newAccountService(t)

		account, err := svc.Create(context.Background(), validAccountInput())
		require.NoError(t, err)

		input := validAccountInput()
		input.Host = "smtp.outro.com"
		input.FromName = "Financeiro"
		input.IsDefault = true
		updated, err := svc.Update(context.Background(), account.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "smtp.outro.com", updated.Host)
		assert.Equal(t, "Financeiro", updated.FromName)
	})

	t.Run("senha em branco mantém a atual", func(t *testing.T) {
		svc, _ := newAccountService(t)

		account, err := svc.Create(context.Background(), validAccountInput())
		require.NoError(t, err)

		input := validAccountInput()
		input.Password = ""
		input.IsDefault = true
		updated, err := svc.Update(context.Background(), account.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "segredo", updated.Password)
	})

	t.Run("conta inexistente devolve não encontrada", func(t *testing.T) {
		svc, _ := newAccountService(t)

		_, err := svc.Update(context.Background(), "inexistente", validAccountInput())
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestSetDefaultMailAccount(t *testing.T) {
	t.Run("troca a conta padrão e desmarca a anterior", func(t *testing.T) {
		svc, store := newAccountService(t)
		ctx := context.Background()

		first, err := svc.Create(ctx, validAccountInput())
		require.NoError(t, err)

		input := validAccountInput()
		input.Username = "cobranca@example.com"
		second, err := svc.Create(ctx, input)
		require.NoError(t, err)

		require.NoError(t, svc.SetDefault(ctx, second.ID))

		def, err := store.GetDefaultMailAccount()
		require.NoError(t, err)
		assert.Equal(t, second.ID, def.ID)

		old, err := store.GetMailAccount(first.ID)
		require.NoError(t, err)
		assert.False(t, old.IsDefault)
	})

	t.Run("conta inexistente devolve não encontrada", func(t *testing.T) {
		svc, _ := newAccountService(t)
		assert.ErrorIs(t, svc.SetDefault(context.Background(), "inexistente"), ErrAccountNotFound)
	})
}

func TestDeleteMailAccount(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, validAccountInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, account.ID))
	_, err = svc.Get(ctx, account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
