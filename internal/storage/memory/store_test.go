package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

func newContract(id, token string, status domain.SignatureStatus) *domain.Contract {
	return &domain.Contract{
		ID:            id,
		Subject:       "Contrato de registro de marca",
		SignatoryName: "Fulano de Tal",
		Status:        status,
		AccessToken:   token,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestContractRepository(t *testing.T) {
	store := NewStore()

	t.Run("salva e busca por ID e por token", func(t *testing.T) {
		c := newContract("c1", "tok123abc", domain.SignaturePending)
		require.NoError(t, store.SaveContract(c))

		got, err := store.GetContract("c1")
		require.NoError(t, err)
		assert.Equal(t, "Contrato de registro de marca", got.Subject)

		byTok, err := store.GetContractByToken("tok123abc")
		require.NoError(t, err)
		assert.Equal(t, "c1", byTok.ID)
	})

	t.Run("token desconhecido retorna não encontrado", func(t *testing.T) {
		_, err := store.GetContractByToken("inexistente")
		assert.ErrorIs(t, err, storage.ErrContractNotFound)
	})

	t.Run("cópia defensiva impede mutação externa", func(t *testing.T) {
		got, err := store.GetContract("c1")
		require.NoError(t, err)
		got.Subject = "alterado fora do store"

		again, err := store.GetContract("c1")
		require.NoError(t, err)
		assert.Equal(t, "Contrato de registro de marca", again.Subject)
	})

	t.Run("atualiza contrato existente", func(t *testing.T) {
		got, err := store.GetContract("c1")
		require.NoError(t, err)
		got.Status = domain.SignatureSigned
		require.NoError(t, store.UpdateContract(got))

		again, err := store.GetContract("c1")
		require.NoError(t, err)
		assert.Equal(t, domain.SignatureSigned, again.Status)
	})

	t.Run("atualizar contrato inexistente falha", func(t *testing.T) {
		err := store.UpdateContract(newContract("nao-existe", "t", domain.SignaturePending))
		assert.ErrorIs(t, err, storage.ErrContractNotFound)
	})
}

func TestListContracts(t *testing.T) {
	store := NewStore()
	for i, id := range []string{"a", "b", "c"} {
		c := newContract(id, "tok"+id+"000", domain.SignaturePending)
		c.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveContract(c))
	}
	signed := newContract("d", "tokd000", domain.SignatureSigned)
	require.NoError(t, store.SaveContract(signed))

	t.Run("paginação ordena por criação decrescente", func(t *testing.T) {
		page, total, err := store.ListContracts(1, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		require.Len(t, page, 2)
	})

	t.Run("filtro por status", func(t *testing.T) {
		status := domain.SignatureSigned
		page, total, err := store.ListContracts(1, 10, &status)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, "d", page[0].ID)
	})

	t.Run("página além do fim devolve vazio", func(t *testing.T) {
		page, total, err := store.ListContracts(9, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Empty(t, page)
	})
}

func TestMarkExpiredContracts(t *testing.T) {
	store := NewStore()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := newContract("venceu", "tokvenceu1", domain.SignaturePending)
	expired.SignatureExpiresAt = &past
	valid := newContract("vigente", "tokvigente", domain.SignaturePending)
	valid.SignatureExpiresAt = &future
	open := newContract("aberto", "tokaberto1", domain.SignaturePending)

	require.NoError(t, store.SaveContract(expired))
	require.NoError(t, store.SaveContract(valid))
	require.NoError(t, store.SaveContract(open))

	count, err := store.MarkExpiredContracts(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetContract("venceu")
	require.NoError(t, err)
	assert.Equal(t, domain.SignatureExpired, got.Status)

	got, err = store.GetContract("aberto")
	require.NoError(t, err)
	assert.Equal(t, domain.SignaturePending, got.Status)
}

func TestAuditRepository(t *testing.T) {
	store := NewStore()

	for i := 0; i < 5; i++ {
		entry := &domain.AuditLogEntry{
			ID:         string(rune('a' + i)),
			ContractID: "c1",
			EventType:  domain.AuditEventLinkAccessed,
			CreatedAt:  time.Now(),
		}
		require.NoError(t, store.AppendAuditEntry(entry))
	}

	t.Run("lista em ordem reversa de inserção", func(t *testing.T) {
		entries, err := store.ListAuditEntries("c1", 0)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		assert.Equal(t, "e", entries[0].ID)
		assert.Equal(t, "a", entries[4].ID)
	})

	t.Run("respeita o limite", func(t *testing.T) {
		entries, err := store.ListAuditEntries("c1", 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("contrato sem trilha devolve vazio", func(t *testing.T) {
		entries, err := store.ListAuditEntries("desconhecido", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestMailAccountRepository(t *testing.T) {
	store := NewStore()

	t.Run("sem contas não há padrão", func(t *testing.T) {
		_, err := store.GetDefaultMailAccount()
		assert.ErrorIs(t, err, storage.ErrNoDefaultMailAccount)
	})

	a1 := &domain.MailAccount{ID: "m1", Host: "smtp.example.com", Port: 587, Username: "contato@webmarcas.net", IsDefault: true, CreatedAt: time.Now()}
	a2 := &domain.MailAccount{ID: "m2", Host: "smtp2.example.com", Port: 465, Username: "financeiro@webmarcas.net", CreatedAt: time.Now().Add(time.Second)}
	require.NoError(t, store.SaveMailAccount(a1))
	require.NoError(t, store.SaveMailAccount(a2))

	t.Run("devolve a conta padrão", func(t *testing.T) {
		got, err := store.GetDefaultMailAccount()
		require.NoError(t, err)
		assert.Equal(t, "m1", got.ID)
	})

	t.Run("trocar o padrão desmarca o anterior", func(t *testing.T) {
		require.NoError(t, store.SetDefaultMailAccount("m2"))

		got, err := store.GetDefaultMailAccount()
		require.NoError(t, err)
		assert.Equal(t, "m2", got.ID)

		old, err := store.GetMailAccount("m1")
		require.NoError(t, err)
		assert.False(t, old.IsDefault)
	})

	t.Run("salvar conta marcada como padrão desmarca as demais", func(t *testing.T) {
		a3 := &domain.MailAccount{ID: "m3", Host: "smtp3.example.com", Port: 587, IsDefault: true, CreatedAt: time.Now()}
		require.NoError(t, store.SaveMailAccount(a3))

		got, err := store.GetDefaultMailAccount()
		require.NoError(t, err)
		assert.Equal(t, "m3", got.ID)
	})

	t.Run("remove conta", func(t *testing.T) {
		require.NoError(t, store.DeleteMailAccount("m3"))
		_, err := store.GetMailAccount("m3")
		assert.ErrorIs(t, err, storage.ErrMailAccountNotFound)

		_, err = store.GetDefaultMailAccount()
		assert.ErrorIs(t, err, storage.ErrNoDefaultMailAccount)
	})
}

func TestUserRepository(t *testing.T) {
	store := NewStore()

	user := &domain.User{
		ID:       "u1",
		Email:    "Admin@WebMarcas.net",
		Username: "admin",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(user))

	t.Run("email duplicado é rejeitado", func(t *testing.T) {
		err := store.CreateUser(&domain.User{ID: "u2", Email: "admin@webmarcas.net"})
		assert.ErrorIs(t, err, storage.ErrEmailExists)
	})

	t.Run("busca por email ignora maiúsculas", func(t *testing.T) {
		got, err := store.GetUserByEmail("admin@webmarcas.net")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("busca por nome de usuário", func(t *testing.T) {
		got, err := store.GetUserByUsername("ADMIN")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("atualização reindexa email", func(t *testing.T) {
		got, err := store.GetUserByID("u1")
		require.NoError(t, err)
		got.Email = "novo@webmarcas.net"
		require.NoError(t, store.UpdateUser(got))

		_, err = store.GetUserByEmail("admin@webmarcas.net")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		again, err := store.GetUserByEmail("novo@webmarcas.net")
		require.NoError(t, err)
		assert.Equal(t, "u1", again.ID)
	})

	t.Run("registra último acesso", func(t *testing.T) {
		require.NoError(t, store.UpdateLastLogin("u1"))
		got, err := store.GetUserByID("u1")
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
	})

	t.Run("listagem com busca", func(t *testing.T) {
		users, total, err := store.ListUsers(1, 10, "novo")
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
	})
}

func TestRateLimitRepository(t *testing.T) {
	store := NewStore()

	count, err := store.IncrementRateLimit("ip:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.IncrementRateLimit("ip:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("janela expirada reinicia o contador", func(t *testing.T) {
		_, err := store.IncrementRateLimit("ip:curto", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		count, err := store.GetRateLimit("ip:curto")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
