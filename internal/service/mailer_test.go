package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

// MockTransport registra as entregas sem tocar a rede.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Deliver(ctx context.Context, account *domain.MailAccount, from string, recipients []string, message []byte) error {
	args := m.Called(ctx, account, from, recipients, message)
	return args.Error(0)
}

func defaultAccount(t *testing.T, store *memory.Store) *domain.MailAccount {
	t.Helper()
	account := &domain.MailAccount{
		ID:        "m1",
		Host:      "smtp.webmarcas.net",
		Port:      587,
		Username:  "contato@webmarcas.net",
		Password:  "segredo",
		FromName:  "WebMarcas",
		IsDefault: true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveMailAccount(account))
	return account
}

func TestSendWithoutDefaultAccount(t *testing.T) {
	store := memory.NewStore()
	transport := &MockTransport{}
	svc := NewMailerService(store, transport, nil)

	err := svc.Send(context.Background(), domain.MailMessage{
		To:      []string{"cliente@example.com"},
		Subject: "Contrato disponível",
		Body:    "Seu contrato está pronto para assinatura.",
	})

	assert.ErrorIs(t, err, ErrNoDefaultAccount)
	// Nenhuma atividade de transporte sem conta padrão.
	transport.AssertNotCalled(t, "Deliver",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend(t *testing.T) {
	t.Run("entrega pela conta padrão", func(t *testing.T) {
		store := memory.NewStore()
		account := defaultAccount(t, store)
		transport := &MockTransport{}
		transport.On("Deliver",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)
		svc := NewMailerService(store, transport, nil)

		err := svc.Send(context.Background(), domain.MailMessage{
			To:      []string{"cliente@example.com"},
			Cc:      []string{"juridico@webmarcas.net"},
			Subject: "Contrato disponível",
			Body:    "Seu contrato está pronto para assinatura.",
		})
		require.NoError(t, err)

		transport.AssertNumberOfCalls(t, "Deliver", 1)
		call := transport.Calls[0]
		assert.Equal(t, account.ID, call.Arguments.Get(1).(*domain.MailAccount).ID)
		assert.Equal(t, account.Username, call.Arguments.Get(2).(string))
		assert.Equal(t, []string{"cliente@example.com", "juridico@webmarcas.net"},
			call.Arguments.Get(3).([]string))
	})

	t.Run("corpo simples vira HTML embrulhado", func(t *testing.T) {
		store := memory.NewStore()
		defaultAccount(t, store)
		transport := &MockTransport{}
		transport.On("Deliver",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)
		svc := NewMailerService(store, transport, nil)

		err := svc.Send(context.Background(), domain.MailMessage{
			To:      []string{"cliente@example.com"},
			Subject: "Aviso",
			Body:    "Linha 1\nLinha 2 <importante>",
		})
		require.NoError(t, err)

		message := string(transport.Calls[0].Arguments.Get(4).([]byte))
		assert.Contains(t, message, "Content-Type: text/html")
		assert.Contains(t, message, "Linha 1<br>")
		assert.Contains(t, message, "&lt;importante&gt;")
		assert.Contains(t, message, "From: WebMarcas <contato@webmarcas.net>")
	})

	t.Run("sem destinatário", func(t *testing.T) {
		store := memory.NewStore()
		defaultAccount(t, store)
		transport := &MockTransport{}
		svc := NewMailerService(store, transport, nil)

		err := svc.Send(context.Background(), domain.MailMessage{Subject: "Aviso"})
		assert.ErrorIs(t, err, domain.ErrNoRecipients)
		transport.AssertNotCalled(t, "Deliver",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falha de transporte propaga sem nova tentativa", func(t *testing.T) {
		store := memory.NewStore()
		defaultAccount(t, store)
		transport := &MockTransport{}
		transport.On("Deliver",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)
		svc := NewMailerService(store, transport, nil)

		err := svc.Send(context.Background(), domain.MailMessage{
			To:      []string{"cliente@example.com"},
			Subject: "Aviso",
			Body:    "corpo",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSendFailed)
		assert.Contains(t, err.Error(), assert.AnError.Error())
		transport.AssertNumberOfCalls(t, "Deliver", 1)
	})
}
