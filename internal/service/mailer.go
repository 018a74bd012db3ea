package service

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

var (
	// ErrNoDefaultAccount nenhuma conta de envio marcada como padrão
	ErrNoDefaultAccount = errors.New("nenhuma conta de envio padrão configurada")
	// ErrSendFailed falha na entrega ao servidor SMTP
	ErrSendFailed = errors.New("falha ao enviar o email")
)

// Transport entrega uma mensagem já montada através de uma conta SMTP.
// Abstraído para os testes cobrirem o serviço sem rede.
type Transport interface {
	Deliver(ctx context.Context, account *domain.MailAccount, from string, recipients []string, message []byte) error
}

// MailerService envia emails transacionais (links de assinatura, confirmações
// de registro) pela conta padrão. Uma tentativa por chamada; reenvio é decisão
// do chamador.
type MailerService struct {
	accounts  storage.MailAccountRepository
	transport Transport
	log       *zap.Logger
	now       func() time.Time
}

// NewMailerService cria o serviço de envio.
func NewMailerService(accounts storage.MailAccountRepository, transport Transport, log *zap.Logger) *MailerService {
	if transport == nil {
		transport = &SMTPTransport{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MailerService{
		accounts:  accounts,
		transport: transport,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Send entrega a mensagem pela conta padrão.
//
// A resolução da conta acontece antes de qualquer atividade de transporte:
// sem conta padrão, nenhuma conexão é aberta.
func (s *MailerService) Send(ctx context.Context, msg domain.MailMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	account, err := s.accounts.GetDefaultMailAccount()
	if err != nil {
		if errors.Is(err, storage.ErrNoDefaultMailAccount) {
			return ErrNoDefaultAccount
		}
		return fmt.Errorf("falha ao consultar a conta de envio: %w", err)
	}

	from := account.SenderHeader()
	if msg.From != "" {
		from = msg.From
	}

	message := s.buildMessage(account, from, msg)

	if err := s.transport.Deliver(ctx, account, account.Username, msg.Recipients(), message); err != nil {
		monitoring.MailSendFailures.Inc()
		s.log.Error("falha ao entregar email",
			zap.String("host", account.Host),
			zap.Int("recipients", len(msg.Recipients())),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s", ErrSendFailed, err.Error())
	}

	monitoring.MailSent.Inc()
	s.log.Info("email enviado",
		zap.String("host", account.Host),
		zap.Int("recipients", len(msg.Recipients())),
	)
	return nil
}

// buildMessage monta a mensagem MIME. Sem corpo HTML o texto simples é
// embrulhado em um contêiner HTML mínimo, como o painel espera.
func (s *MailerService) buildMessage(account *domain.MailAccount, from string, msg domain.MailMessage) []byte {
	html := msg.HTML
	if html == "" {
		html = wrapPlainBody(msg.Body)
	}

	var b strings.Builder
	writeHeader := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		writeHeader("Cc", strings.Join(msg.Cc, ", "))
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", s.now().Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), account.Host))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/html; charset="utf-8"`)
	b.WriteString("\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	return []byte(b.String())
}

func wrapPlainBody(body string) string {
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(body)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	return `<div style="font-family: Arial, sans-serif; font-size: 14px; color: #333;">` +
		"\n" + escaped + "\n</div>"
}

// SMTPTransport entrega mensagens via SMTP autenticado. Porta 465 usa TLS
// implícito; nas demais a conexão abre em claro e sobe para STARTTLS logo
// após o EHLO.
type SMTPTransport struct {
	// InsecureSkipVerify aceita certificados inválidos; apenas para
	// ambientes de teste com servidores locais.
	InsecureSkipVerify bool
}

// Deliver conecta, autentica e envia a mensagem em uma única tentativa.
func (t *SMTPTransport) Deliver(ctx context.Context, account *domain.MailAccount, from string, recipients []string, message []byte) error {
	addr := account.Address()
	tlsConfig := &tls.Config{
		ServerName:         account.Host,
		InsecureSkipVerify: t.InsecureSkipVerify,
	}

	var (
		client *smtp.Client
		err    error
	)
	if account.Port == 465 {
		client, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		client, err = smtp.DialStartTLS(addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("falha ao conectar em %s: %w", addr, err)
	}
	defer client.Close()

	if account.Username != "" {
		auth := sasl.NewPlainClient("", account.Username, account.Password)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("falha na autenticação: %w", err)
		}
	}

	if err := client.SendMail(from, recipients, strings.NewReader(string(message))); err != nil {
		return fmt.Errorf("falha no envio: %w", err)
	}

	return client.Quit()
}
