package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

// Erros de validação
var (
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrEmailTooLong  = errors.New("email address too long")
	ErrInvalidTaxID  = errors.New("invalid tax id")
	ErrInvalidToken  = errors.New("invalid token format")
	ErrTokenTooShort = errors.New("token too short")
)

// Limites de validação
const (
	// RFC 5322 limite de tamanho do endereço de email
	MaxEmailLength = 254

	// Tamanho mínimo do token de resolução
	MinTokenLength = 6
	MaxTokenLength = 64
)

var (
	// CPF: 11 dígitos; CNPJ: 14 dígitos (com ou sem pontuação já removida)
	cpfRegex  = regexp.MustCompile(`^\d{11}$`)
	cnpjRegex = regexp.MustCompile(`^\d{14}$`)

	// Tokens de resolução são opacos: alfanuméricos, sem pontuação
	tokenRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// ValidateEmailAddress valida um endereço de destinatário de email.
func ValidateEmailAddress(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateTaxID valida CPF ou CNPJ, incluindo os dígitos verificadores.
func ValidateTaxID(taxID string) error {
	digits := stripTaxIDPunctuation(taxID)
	switch {
	case cpfRegex.MatchString(digits):
		if !validCPF(digits) {
			return ErrInvalidTaxID
		}
	case cnpjRegex.MatchString(digits):
		if !validCNPJ(digits) {
			return ErrInvalidTaxID
		}
	default:
		return ErrInvalidTaxID
	}
	return nil
}

// validCPF confere os dois dígitos verificadores do CPF. Sequências com todos
// os dígitos iguais passam na conta mas são inválidas por definição.
func validCPF(digits string) bool {
	if allSameDigit(digits) {
		return false
	}
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(digits[i]-'0') * (n + 1 - i)
		}
		dv := sum * 10 % 11 % 10
		if dv != int(digits[n]-'0') {
			return false
		}
	}
	return true
}

// Pesos do CNPJ para o segundo dígito; o primeiro usa a fatia a partir do
// índice 1.
var cnpjWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// validCNPJ confere os dois dígitos verificadores do CNPJ.
func validCNPJ(digits string) bool {
	if allSameDigit(digits) {
		return false
	}
	for _, n := range []int{12, 13} {
		offset := len(cnpjWeights) - n
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(digits[i]-'0') * cnpjWeights[offset+i]
		}
		dv := sum % 11
		if dv < 2 {
			dv = 0
		} else {
			dv = 11 - dv
		}
		if dv != int(digits[n]-'0') {
			return false
		}
	}
	return true
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// ValidateToken valida o formato de um token de resolução.
func ValidateToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if len(token) < MinTokenLength {
		return ErrTokenTooShort
	}
	if len(token) > MaxTokenLength {
		return ErrInvalidToken
	}
	if !tokenRegex.MatchString(token) {
		return ErrInvalidToken
	}
	return nil
}

// stripTaxIDPunctuation remove pontuação usual de CPF/CNPJ (., -, /).
func stripTaxIDPunctuation(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r != '.' && r != '-' && r != '/' && r != ' ' {
			return ""
		}
	}
	return b.String()
}
