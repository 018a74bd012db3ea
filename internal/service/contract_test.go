package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

func newContractService(t *testing.T) (*ContractService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewContractService(store, store, nil, nil, nil)
	return svc, store
}

func issueContract(t *testing.T, svc *ContractService, days int) *domain.Contract {
	t.Helper()
	contract, err := svc.Create(context.Background(), CreateContractInput{
		Subject:        "Contrato de Registro de Marca",
		BodyHTML:       "<p>Termos do registro da marca.</p>",
		DocumentType:   "registro",
		SignatoryName:  "Maria Oliveira",
		SignatoryTaxID: "529.982.247-25",
		SignatureDays:  days,
	})
	require.NoError(t, err)
	return contract
}

func TestCreateContract(t *testing.T) {
	svc, _ := newContractService(t)

	t.Run("emite contrato pendente com token de acesso", func(t *testing.T) {
		contract := issueContract(t, svc, 7)
		assert.Equal(t, domain.SignaturePending, contract.Status)
		assert.Len(t, contract.AccessToken, accessTokenLength)
		require.NotNil(t, contract.SignatureExpiresAt)
		assert.True(t, contract.SignatureExpiresAt.After(time.Now()))
	})

	t.Run("sem prazo quando dias de assinatura é zero", func(t *testing.T) {
		contract := issueContract(t, svc, 0)
		assert.Nil(t, contract.SignatureExpiresAt)
	})

	t.Run("documento fiscal inválido é rejeitado", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateContractInput{
			SignatoryName:  "Maria Oliveira",
			SignatoryTaxID: "123",
		})
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	svc, store := newContractService(t)
	contract := issueContract(t, svc, 7)
	meta := AccessMeta{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

	t.Run("token vazio", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "", meta)
		assert.ErrorIs(t, err, ErrTokenMissing)

		_, err = svc.Resolve(context.Background(), "   ", meta)
		assert.ErrorIs(t, err, ErrTokenMissing)
	})

	t.Run("token desconhecido e token malformado retornam o mesmo erro", func(t *testing.T) {
		_, errUnknown := svc.Resolve(context.Background(), "tokenInexistente123", meta)
		_, errMalformed := svc.Resolve(context.Background(), "not-a-token!!", meta)

		assert.ErrorIs(t, errUnknown, ErrContractNotFound)
		assert.ErrorIs(t, errMalformed, ErrContractNotFound)
		assert.Equal(t, errUnknown.Error(), errMalformed.Error())
	})

	t.Run("resolução bem-sucedida registra acesso na auditoria", func(t *testing.T) {
		got, err := svc.Resolve(context.Background(), contract.AccessToken, meta)
		require.NoError(t, err)
		assert.Equal(t, contract.ID, got.ID)

		entries, err := store.ListAuditEntries(contract.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		entry := entries[0]
		assert.Equal(t, domain.AuditEventLinkAccessed, entry.EventType)
		assert.Equal(t, "203.0.113.7", entry.ActorIP)
		assert.Equal(t, "Mozilla/5.0", entry.ActorUserAgent)
	})

	t.Run("auditoria guarda apenas o prefixo do token", func(t *testing.T) {
		entries, err := store.ListAuditEntries(contract.ID, 10)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		prefix, ok := entries[0].EventData["token_prefix"].(string)
		require.True(t, ok)
		assert.Equal(t, contract.AccessToken[:8]+"...", prefix)
		assert.NotContains(t, prefix, contract.AccessToken[8:])
	})

	t.Run("acessante sem identificação vira unknown", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), contract.AccessToken, AccessMeta{})
		require.NoError(t, err)

		entries, err := store.ListAuditEntries(contract.ID, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "unknown", entries[0].ActorIP)
		assert.Equal(t, "unknown", entries[0].ActorUserAgent)
	})

	t.Run("contrato com prazo vencido", func(t *testing.T) {
		expired := issueContract(t, svc, 7)
		svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, 8) }
		defer func() { svc.now = func() time.Time { return time.Now().UTC() } }()

		_, err := svc.Resolve(context.Background(), expired.AccessToken, meta)
		assert.ErrorIs(t, err, ErrContractExpired)
	})
}

func TestResolveAuditFailureDoesNotBlock(t *testing.T) {
	svc, store := newContractService(t)
	contract := issueContract(t, svc, 7)

	// Auditoria apontando para repositório que sempre falha.
	svc.audits = failingAuditRepo{}

	got, err := svc.Resolve(context.Background(), contract.AccessToken, AccessMeta{IP: "198.51.100.1"})
	require.NoError(t, err)
	assert.Equal(t, contract.ID, got.ID)

	entries, err := store.ListAuditEntries(contract.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingAuditRepo struct{}

func (failingAuditRepo) AppendAuditEntry(*domain.AuditLogEntry) error {
	return assert.AnError
}

func (failingAuditRepo) ListAuditEntries(string, int) ([]domain.AuditLogEntry, error) {
	return nil, assert.AnError
}

func TestSign(t *testing.T) {
	signature := "data:image/png;base64,iVBORw0KGgo="

	t.Run("assinatura em contrato pendente", func(t *testing.T) {
		svc, store := newContractService(t)
		contract := issueContract(t, svc, 7)

		signed, err := svc.Sign(context.Background(), SignInput{
			Token:          contract.AccessToken,
			SignatureImage: signature,
			Meta:           AccessMeta{IP: "203.0.113.9", UserAgent: "Mozilla/5.0"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SignatureSigned, signed.Status)
		require.NotNil(t, signed.SignatureImage)
		assert.Equal(t, signature, *signed.SignatureImage)
		assert.NotNil(t, signed.SignedAt)
		assert.Equal(t, "203.0.113.9", signed.SignerIP)

		entries, err := store.ListAuditEntries(contract.ID, 10)
		require.NoError(t, err)
		var types []string
		for _, e := range entries {
			types = append(types, e.EventType)
		}
		assert.Contains(t, types, domain.AuditEventContractSigned)
	})

	t.Run("contrato já assinado é rejeitado", func(t *testing.T) {
		svc, _ := newContractService(t)
		contract := issueContract(t, svc, 7)

		_, err := svc.Sign(context.Background(), SignInput{
			Token:          contract.AccessToken,
			SignatureImage: signature,
		})
		require.NoError(t, err)

		_, err = svc.Sign(context.Background(), SignInput{
			Token:          contract.AccessToken,
			SignatureImage: signature,
		})
		assert.ErrorIs(t, err, ErrContractNotPending)
	})

	t.Run("assinatura ausente", func(t *testing.T) {
		svc, _ := newContractService(t)
		contract := issueContract(t, svc, 7)

		_, err := svc.Sign(context.Background(), SignInput{Token: contract.AccessToken})
		assert.ErrorIs(t, err, ErrSignatureMissing)
	})

	t.Run("contrato expirado não aceita assinatura", func(t *testing.T) {
		svc, _ := newContractService(t)
		contract := issueContract(t, svc, 1)
		svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, 2) }

		_, err := svc.Sign(context.Background(), SignInput{
			Token:          contract.AccessToken,
			SignatureImage: signature,
		})
		assert.ErrorIs(t, err, ErrContractExpired)
	})
}

func TestMarkExpired(t *testing.T) {
	svc, store := newContractService(t)
	withDeadline := issueContract(t, svc, 1)
	open := issueContract(t, svc, 0)

	svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, 2) }

	count, err := svc.MarkExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetContract(withDeadline.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SignatureExpired, got.Status)

	got, err = store.GetContract(open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SignaturePending, got.Status)
}

func TestGenerateAccessToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, err := generateAccessToken(accessTokenLength)
		require.NoError(t, err)
		assert.Len(t, token, accessTokenLength)
		assert.NoError(t, domain.ValidateToken(token))

		_, dup := seen[token]
		assert.False(t, dup)
		seen[token] = struct{}{}
	}
}
