package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

var (
	// ErrAccountNotFound conta de envio inexistente
	ErrAccountNotFound = errors.New("conta de envio não encontrada")
	// ErrAccountInvalid dados de conta incompletos
	ErrAccountInvalid = errors.New("dados da conta de envio inválidos")
)

// MailAccountService administra as contas SMTP usadas pelo envio
// transacional.
type MailAccountService struct {
	accounts storage.MailAccountRepository
	log      *zap.Logger
}

// NewMailAccountService cria o serviço de contas de envio.
func NewMailAccountService(accounts storage.MailAccountRepository, log *zap.Logger) *MailAccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailAccountService{accounts: accounts, log: log}
}

// MailAccountInput define os dados de criação e edição de conta.
type MailAccountInput struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromName  string `json:"fromName"`
	IsDefault bool   `json:"isDefault"`
}

func (in *MailAccountInput) validate() error {
	if strings.TrimSpace(in.Host) == "" || strings.TrimSpace(in.Username) == "" {
		return ErrAccountInvalid
	}
	if err := domain.ValidateEmailAddress(in.Username); err != nil {
		return fmt.Errorf("%w: %s", ErrAccountInvalid, err.Error())
	}
	if in.Port == 0 {
		in.Port = 587
	}
	if in.Port < 1 || in.Port > 65535 {
		return ErrAccountInvalid
	}
	return nil
}

// Create cadastra uma conta de envio. A primeira conta cadastrada vira padrão
// automaticamente.
func (s *MailAccountService) Create(ctx context.Context, input MailAccountInput) (*domain.MailAccount, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.accounts.ListMailAccounts()
	if err != nil {
		return nil, fmt.Errorf("falha ao listar contas de envio: %w", err)
	}
	if len(existing) == 0 {
		input.IsDefault = true
	}

	now := time.Now().UTC()
	account := &domain.MailAccount{
		ID:        uuid.NewString(),
		Host:      strings.TrimSpace(input.Host),
		Port:      input.Port,
		Username:  strings.TrimSpace(input.Username),
		Password:  input.Password,
		FromName:  strings.TrimSpace(input.FromName),
		IsDefault: input.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.SaveMailAccount(account); err != nil {
		return nil, fmt.Errorf("falha ao gravar a conta de envio: %w", err)
	}

	s.log.Info("conta de envio cadastrada",
		zap.String("account_id", account.ID),
		zap.String("host", account.Host),
		zap.Bool("is_default", account.IsDefault),
	)
	return account, nil
}

// Get busca uma conta pelo ID.
func (s *MailAccountService) Get(ctx context.Context, id string) (*domain.MailAccount, error) {
	account, err := s.accounts.GetMailAccount(id)
	if err != nil {
		if errors.Is(err, storage.ErrMailAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// Update edita uma conta existente. Senha em branco mantém a atual.
func (s *MailAccountService) Update(ctx context.Context, id string, input MailAccountInput) (*domain.MailAccount, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Host = strings.TrimSpace(input.Host)
	account.Port = input.Port
	account.Username = strings.TrimSpace(input.Username)
	if input.Password != "" {
		account.Password = input.Password
	}
	account.FromName = strings.TrimSpace(input.FromName)
	account.IsDefault = input.IsDefault
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateMailAccount(account); err != nil {
		if errors.Is(err, storage.ErrMailAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("falha ao atualizar a conta de envio: %w", err)
	}

	s.log.Info("conta de envio atualizada",
		zap.String("account_id", account.ID),
		zap.Bool("is_default", account.IsDefault),
	)
	return account, nil
}

// List devolve todas as contas cadastradas.
func (s *MailAccountService) List(ctx context.Context) ([]domain.MailAccount, error) {
	return s.accounts.ListMailAccounts()
}

// SetDefault troca a conta padrão de envio.
func (s *MailAccountService) SetDefault(ctx context.Context, id string) error {
	if err := s.accounts.SetDefaultMailAccount(id); err != nil {
		if errors.Is(err, storage.ErrMailAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	s.log.Info("conta padrão de envio alterada", zap.String("account_id", id))
	return nil
}

// Delete remove uma conta de envio.
func (s *MailAccountService) Delete(ctx context.Context, id string) error {
	if err := s.accounts.DeleteMailAccount(id); err != nil {
		if errors.Is(err, storage.ErrMailAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	s.log.Info("conta de envio removida", zap.String("account_id", id))
	return nil
}
