package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmailAddress(t *testing.T) {
	t.Run("endereço válido", func(t *testing.T) {
		assert.NoError(t, ValidateEmailAddress("cliente@example.com.br"))
	})

	t.Run("endereço institucional válido", func(t *testing.T) {
		assert.NoError(t, ValidateEmailAddress("contato@webmarcas.net"))
	})

	t.Run("endereço vazio", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEmailAddress(""), ErrInvalidEmail)
	})

	t.Run("endereço sem domínio", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEmailAddress("cliente@"), ErrInvalidEmail)
	})

	t.Run("endereço longo demais", func(t *testing.T) {
		long := make([]byte, MaxEmailLength)
		for i := range long {
			long[i] = 'a'
		}
		assert.ErrorIs(t, ValidateEmailAddress(string(long)+"@example.com"), ErrEmailTooLong)
	})
}

func TestValidateTaxID(t *testing.T) {
	t.Run("CPF sem pontuação", func(t *testing.T) {
		assert.NoError(t, ValidateTaxID("52998224725"))
	})

	t.Run("CPF com pontuação", func(t *testing.T) {
		assert.NoError(t, ValidateTaxID("529.982.247-25"))
	})

	t.Run("CNPJ com pontuação", func(t *testing.T) {
		assert.NoError(t, ValidateTaxID("11.222.333/0001-81"))
	})

	t.Run("dígito verificador de CPF incorreto", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTaxID("529.982.247-24"), ErrInvalidTaxID)
	})

	t.Run("dígito verificador de CNPJ incorreto", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTaxID("11.222.333/0001-82"), ErrInvalidTaxID)
	})

	t.Run("CPF com todos os dígitos iguais", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTaxID("111.111.111-11"), ErrInvalidTaxID)
	})

	t.Run("quantidade de dígitos inválida", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTaxID("12345"), ErrInvalidTaxID)
	})

	t.Run("caracteres não numéricos", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTaxID("abc.def.ghi-jk"), ErrInvalidTaxID)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("token válido", func(t *testing.T) {
		assert.NoError(t, ValidateToken("abc123XYZ"))
	})

	t.Run("token vazio", func(t *testing.T) {
		assert.ErrorIs(t, ValidateToken(""), ErrInvalidToken)
	})

	t.Run("token curto demais", func(t *testing.T) {
		assert.ErrorIs(t, ValidateToken("abc"), ErrTokenTooShort)
	})

	t.Run("token com pontuação", func(t *testing.T) {
		assert.ErrorIs(t, ValidateToken("abc-123!"), ErrInvalidToken)
	})
}

func TestTruncateToken(t *testing.T) {
	t.Run("token longo é truncado ao prefixo", func(t *testing.T) {
		assert.Equal(t, "abcdefgh...", TruncateToken("abcdefghijklmnop"))
	})

	t.Run("token curto é mantido", func(t *testing.T) {
		assert.Equal(t, "abc123", TruncateToken("abc123"))
	})
}

func TestContractLifecycle(t *testing.T) {
	t.Run("contrato sem expiração nunca expira", func(t *testing.T) {
		c := &Contract{Status: SignaturePending}
		assert.False(t, c.IsExpired(time.Now()))
		assert.True(t, c.CanSign(time.Now()))
	})

	t.Run("contrato expirado não aceita assinatura", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		c := &Contract{Status: SignaturePending, SignatureExpiresAt: &past}
		assert.True(t, c.IsExpired(time.Now()))
		assert.False(t, c.CanSign(time.Now()))
	})

	t.Run("contrato assinado não aceita nova assinatura", func(t *testing.T) {
		c := &Contract{Status: SignatureSigned}
		assert.False(t, c.CanSign(time.Now()))
	})
}
