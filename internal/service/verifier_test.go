package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newVerifierWithProbe(probeErr error) *VerifierService {
	svc := NewVerifierService(nil)
	svc.probe = func(ctx context.Context, input VerifyInput) error {
		return probeErr
	}
	return svc
}

func validInput() VerifyInput {
	return VerifyInput{
		Host:     "smtp.webmarcas.net",
		Port:     587,
		Username: "contato@webmarcas.net",
		Password: "segredo",
	}
}

func TestVerifyMissingFields(t *testing.T) {
	svc := newVerifierWithProbe(nil)

	cases := []struct {
		name  string
		input VerifyInput
	}{
		{"sem host", VerifyInput{Username: "a@b.com", Password: "x"}},
		{"sem usuário", VerifyInput{Host: "smtp.example.com", Password: "x"}},
		{"sem senha", VerifyInput{Host: "smtp.example.com", Username: "a@b.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := svc.Verify(context.Background(), tc.input)
			assert.False(t, result.OK)
			assert.Equal(t, VerifyCategoryMissingFields, result.Category)
		})
	}
}

func TestVerifyDefaultPort(t *testing.T) {
	svc := NewVerifierService(nil)
	var gotPort int
	svc.probe = func(ctx context.Context, input VerifyInput) error {
		gotPort = input.Port
		return nil
	}

	input := validInput()
	input.Port = 0
	result := svc.Verify(context.Background(), input)

	assert.True(t, result.OK)
	assert.Equal(t, 587, gotPort)
}

func TestVerifySuccess(t *testing.T) {
	svc := newVerifierWithProbe(nil)
	result := svc.Verify(context.Background(), validInput())

	assert.True(t, result.OK)
	assert.Equal(t, VerifyCategoryOK, result.Category)
	assert.Empty(t, result.Detail)
}

func TestVerifyClassification(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category string
	}{
		{"falha de autenticação", errors.New("535 5.7.8 Authentication credentials invalid"), VerifyCategoryAuth},
		{"senha incorreta", errors.New("invalid password"), VerifyCategoryAuth},
		{"servidor inexistente", errors.New("dial tcp: lookup smtp.naoexiste.example: no such host"), VerifyCategoryHost},
		{"tempo esgotado", errors.New("dial tcp 203.0.113.1:587: i/o timeout"), VerifyCategoryTimeout},
		{"prazo do contexto", errors.New("context deadline exceeded"), VerifyCategoryTimeout},
		{"conexão recusada", errors.New("dial tcp 203.0.113.1:587: connect: connection refused"), VerifyCategoryRefused},
		{"erro genérico", errors.New("unexpected EOF"), VerifyCategoryGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newVerifierWithProbe(tc.err)
			result := svc.Verify(context.Background(), validInput())

			assert.False(t, result.OK)
			assert.Equal(t, tc.category, result.Category)
			assert.Equal(t, tc.err.Error(), result.Detail)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestVerifyNeverReturnsError(t *testing.T) {
	// A assinatura devolve apenas o resultado etiquetado; este teste documenta
	// que qualquer erro da sessão vira payload, nunca pânico ou erro.
	svc := newVerifierWithProbe(errors.New("broken pipe"))
	result := svc.Verify(context.Background(), validInput())
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Message)
}
