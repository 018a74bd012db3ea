package storage

import (
	"errors"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
)

var (
	// ErrContractNotFound contrato não encontrado
	ErrContractNotFound = errors.New("contract not found")
	// ErrMailAccountNotFound conta de email não encontrada
	ErrMailAccountNotFound = errors.New("mail account not found")
	// ErrNoDefaultMailAccount nenhuma conta de email marcada como padrão
	ErrNoDefaultMailAccount = errors.New("no default mail account")
	// ErrUserNotFound usuário não encontrado
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists email já cadastrado
	ErrEmailExists = errors.New("email already exists")
)

// ContractRepository define o acesso a contratos.
type ContractRepository interface {
	SaveContract(contract *domain.Contract) error
	GetContract(id string) (*domain.Contract, error)
	GetContractByToken(token string) (*domain.Contract, error)
	ListContracts(page, pageSize int, status *domain.SignatureStatus) ([]domain.Contract, int, error)
	UpdateContract(contract *domain.Contract) error
	MarkExpiredContracts(before time.Time) (int, error) // marca contratos vencidos, devolve a quantidade
}

// AuditRepository define o acesso à trilha de auditoria (apenas anexação).
type AuditRepository interface {
	AppendAuditEntry(entry *domain.AuditLogEntry) error
	ListAuditEntries(contractID string, limit int) ([]domain.AuditLogEntry, error)
}

// MailAccountRepository define o acesso às contas de envio SMTP.
type MailAccountRepository interface {
	SaveMailAccount(account *domain.MailAccount) error
	UpdateMailAccount(account *domain.MailAccount) error
	GetMailAccount(id string) (*domain.MailAccount, error)
	GetDefaultMailAccount() (*domain.MailAccount, error)
	ListMailAccounts() ([]domain.MailAccount, error)
	SetDefaultMailAccount(id string) error // torna id a única conta padrão
	DeleteMailAccount(id string) error
}

// UserRepository define o acesso aos usuários do painel.
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	UpdateUser(user *domain.User) error
	UpdateLastLogin(userID string) error
	ListUsers(page, pageSize int, search string) ([]domain.User, int, error)
}

// RateLimitRepository define contadores de limitação de taxa compartilhados.
type RateLimitRepository interface {
	IncrementRateLimit(key string, window time.Duration) (int64, error)
	GetRateLimit(key string) (int64, error)
}

// Store agrega todos os repositórios em um único ponto de injeção.
type Store interface {
	ContractRepository
	AuditRepository
	MailAccountRepository
	UserRepository
	RateLimitRepository

	Close() error
	Health() error
}
