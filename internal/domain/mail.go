package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoRecipients mensagem sem destinatário
	ErrNoRecipients = errors.New("mensagem sem destinatários")
)

// MailAccount guarda as credenciais de envio SMTP configuradas pelo
// administrador. Exatamente uma conta deve estar marcada como padrão;
// na ausência de conta padrão o envio falha de forma fechada.
type MailAccount struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Host      string    `json:"host" gorm:"type:varchar(255)"`
	Port      int       `json:"port" gorm:"default:587"`
	Username  string    `json:"username" gorm:"type:varchar(255)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // nunca retornado ao frontend
	FromName  string    `json:"fromName" gorm:"type:varchar(255)"`
	IsDefault bool      `json:"isDefault" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SenderHeader monta o cabeçalho From no formato "Nome <endereço>".
func (a *MailAccount) SenderHeader() string {
	if a.FromName != "" {
		return fmt.Sprintf("%s <%s>", a.FromName, a.Username)
	}
	return a.Username
}

// Address devolve o endereço host:porta do servidor SMTP.
func (a *MailAccount) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// MailMessage é a mensagem transacional montada a cada envio.
// Nunca é persistida.
type MailMessage struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    string   `json:"html,omitempty"`
	From    string   `json:"from,omitempty"` // remetente alternativo opcional
}

// Validate verifica os campos mínimos da mensagem.
func (m *MailMessage) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range m.To {
		if strings.TrimSpace(addr) == "" {
			return ErrNoRecipients
		}
	}
	return nil
}

// Recipients devolve todos os destinatários do envelope (to + cc + bcc).
func (m *MailMessage) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	out = append(out, m.Bcc...)
	return out
}
