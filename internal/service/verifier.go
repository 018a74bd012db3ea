package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
)

// verifyTimeout limite total da verificação: conexão, apresentação,
// autenticação e NOOP.
const verifyTimeout = 10 * time.Second

// Categorias de falha da verificação SMTP.
const (
	VerifyCategoryOK            = "ok"
	VerifyCategoryMissingFields = "campos_obrigatorios"
	VerifyCategoryAuth          = "autenticacao"
	VerifyCategoryHost          = "servidor_nao_encontrado"
	VerifyCategoryTimeout       = "tempo_esgotado"
	VerifyCategoryRefused       = "conexao_recusada"
	VerifyCategoryGeneric       = "erro"
)

// VerifyInput define as credenciais a testar. Os nomes de campo seguem o
// formulário de configuração do painel.
type VerifyInput struct {
	Host     string `json:"smtp_host"`
	Port     int    `json:"smtp_port"`
	Username string `json:"smtp_user"`
	Password string `json:"smtp_password"`
}

// VerifyResult é o resultado etiquetado da verificação. A operação nunca
// devolve erro: qualquer falha vira um resultado com OK=false.
type VerifyResult struct {
	OK       bool   `json:"success"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
}

// smtpProber executa a sessão de verificação. Abstraído para os testes
// cobrirem a classificação sem rede.
type smtpProber func(ctx context.Context, input VerifyInput) error

// VerifierService testa credenciais SMTP sem enviar mensagem alguma.
type VerifierService struct {
	probe smtpProber
	log   *zap.Logger
}

// NewVerifierService cria o verificador com a sessão SMTP real.
func NewVerifierService(log *zap.Logger) *VerifierService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerifierService{
		probe: probeSMTP,
		log:   log,
	}
}

// Verify testa as credenciais: conecta, autentica e emite um NOOP, tudo
// dentro do limite de 10 segundos.
func (s *VerifierService) Verify(ctx context.Context, input VerifyInput) VerifyResult {
	if strings.TrimSpace(input.Host) == "" ||
		strings.TrimSpace(input.Username) == "" ||
		input.Password == "" {
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryMissingFields,
			Message:  "Informe servidor, usuário e senha para testar a conexão.",
		}
	}
	if input.Port == 0 {
		input.Port = 587
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	start := time.Now()
	err := s.probe(ctx, input)
	elapsed := time.Since(start)

	if err == nil {
		s.log.Info("verificação SMTP bem-sucedida",
			zap.String("host", input.Host),
			zap.Int("port", input.Port),
			zap.Duration("elapsed", elapsed),
		)
		return VerifyResult{
			OK:       true,
			Category: VerifyCategoryOK,
			Message:  "Conexão SMTP verificada com sucesso.",
		}
	}

	monitoring.SMTPVerifyFailures.Inc()
	result := classifyVerifyError(err)
	s.log.Warn("verificação SMTP falhou",
		zap.String("host", input.Host),
		zap.Int("port", input.Port),
		zap.String("category", result.Category),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
	return result
}

// classifyVerifyError traduz o erro bruto em uma categoria e uma mensagem em
// português; o texto original fica em Detail para diagnóstico.
func classifyVerifyError(err error) VerifyResult {
	detail := err.Error()
	text := strings.ToLower(detail)

	switch {
	case strings.Contains(text, "auth") ||
		strings.Contains(text, "535") ||
		strings.Contains(text, "credentials") ||
		strings.Contains(text, "password"):
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryAuth,
			Message:  "Falha de autenticação: verifique o usuário e a senha.",
			Detail:   detail,
		}
	case strings.Contains(text, "no such host") ||
		strings.Contains(text, "lookup"):
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryHost,
			Message:  "Servidor não encontrado: verifique o endereço do servidor SMTP.",
			Detail:   detail,
		}
	case strings.Contains(text, "timeout") ||
		strings.Contains(text, "deadline exceeded"):
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryTimeout,
			Message:  "Tempo de conexão esgotado: o servidor não respondeu em 10 segundos.",
			Detail:   detail,
		}
	case strings.Contains(text, "connection refused"):
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryRefused,
			Message:  "Conexão recusada: verifique a porta e o firewall do servidor.",
			Detail:   detail,
		}
	default:
		return VerifyResult{
			OK:       false,
			Category: VerifyCategoryGeneric,
			Message:  "Não foi possível verificar a conexão SMTP.",
			Detail:   detail,
		}
	}
}

// probeSMTP abre a sessão real: dial com contexto, STARTTLS após o EHLO
// (TLS implícito na 465), AUTH PLAIN e NOOP. Nenhuma mensagem é enviada.
func probeSMTP(ctx context.Context, input VerifyInput) error {
	addr := fmt.Sprintf("%s:%d", input.Host, input.Port)
	tlsConfig := &tls.Config{ServerName: input.Host}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	var client *smtp.Client
	if input.Port == 465 {
		client = smtp.NewClient(tls.Client(conn, tlsConfig))
	} else {
		client, err = smtp.NewClientStartTLS(conn, tlsConfig)
		if err != nil {
			conn.Close()
			return err
		}
	}
	defer client.Close()

	auth := sasl.NewPlainClient("", input.Username, input.Password)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Noop(); err != nil {
		return err
	}

	return client.Quit()
}
