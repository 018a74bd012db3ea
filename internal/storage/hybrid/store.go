package hybrid

import (
	"fmt"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/postgres"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/redis"
)

// TTLs do cache. O contrato fica pouco tempo no cache para o estado público
// refletir rapidamente assinatura e expiração; a conta padrão muda raramente.
const (
	contractTTL       = 5 * time.Minute
	defaultAccountTTL = 30 * time.Minute
)

// Store combina o banco relacional com o cache Redis: leituras quentes
// (contrato por token, conta padrão de envio) passam pelo cache e os
// contadores de limitação de taxa vivem no Redis para valer entre réplicas.
type Store struct {
	db    *postgres.Store
	cache *redis.Cache
}

// NewStore cria o armazenamento híbrido sobre PostgreSQL.
func NewStore(postgresDSN, redisAddr, redisPassword string, redisDB int) (*Store, error) {
	return NewStoreWithType("postgres", postgresDSN, redisAddr, redisPassword, redisDB)
}

// NewStoreWithType cria o armazenamento híbrido sobre o banco indicado.
func NewStoreWithType(dbType, dsn, redisAddr, redisPassword string, redisDB int) (*Store, error) {
	var (
		dbStore *postgres.Store
		err     error
	)

	switch dbType {
	case "mysql":
		dbStore, err = postgres.NewMySQLStore(dsn)
	case "postgres", "postgresql":
		dbStore, err = postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("tipo de banco não suportado: %s (suportados: mysql, postgres)", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao inicializar o banco de dados: %w", err)
	}

	cache, err := redis.NewCache(redisAddr, redisPassword, redisDB)
	if err != nil {
		return nil, fmt.Errorf("falha ao inicializar o redis: %w", err)
	}

	return &Store{
		db:    dbStore,
		cache: cache,
	}, nil
}

// Close fecha o banco e o cache.
func (s *Store) Close() error {
	s.cache.Close()
	return s.db.Close()
}

// Health verifica banco e cache.
func (s *Store) Health() error {
	if err := s.db.Health(); err != nil {
		return err
	}
	return s.cache.Health()
}

// ========== Contract Repository ==========

// SaveContract grava o contrato e o deixa pronto no cache para o primeiro
// acesso ao link.
func (s *Store) SaveContract(contract *domain.Contract) error {
	if err := s.db.SaveContract(contract); err != nil {
		return err
	}
	s.cache.CacheContractByToken(contract, contractTTL)
	return nil
}

// GetContract busca um contrato pelo ID. Busca por ID não passa pelo cache;
// é um caminho administrativo de baixo volume.
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	return s.db.GetContract(id)
}

// GetContractByToken busca um contrato pelo token, preferindo o cache.
func (s *Store) GetContractByToken(token string) (*domain.Contract, error) {
	if contract, err := s.cache.GetCachedContractByToken(token); err == nil {
		return contract, nil
	}

	contract, err := s.db.GetContractByToken(token)
	if err != nil {
		return nil, err
	}

	s.cache.CacheContractByToken(contract, contractTTL)
	return contract, nil
}

// ListContracts delega ao banco.
func (s *Store) ListContracts(page, pageSize int, status *domain.SignatureStatus) ([]domain.Contract, int, error) {
	return s.db.ListContracts(page, pageSize, status)
}

// UpdateContract grava o contrato e invalida o cache do token.
func (s *Store) UpdateContract(contract *domain.Contract) error {
	if err := s.db.UpdateContract(contract); err != nil {
		return err
	}
	s.cache.InvalidateContract(contract)
	return nil
}

// MarkExpiredContracts delega ao banco. Contratos recém-expirados podem
// permanecer no cache até o fim do TTL curto.
func (s *Store) MarkExpiredContracts(before time.Time) (int, error) {
	return s.db.MarkExpiredContracts(before)
}

// ========== Audit Repository ==========

// AppendAuditEntry delega ao banco; a trilha não é cacheada.
func (s *Store) AppendAuditEntry(entry *domain.AuditLogEntry) error {
	return s.db.AppendAuditEntry(entry)
}

// ListAuditEntries delega ao banco.
func (s *Store) ListAuditEntries(contractID string, limit int) ([]domain.AuditLogEntry, error) {
	return s.db.ListAuditEntries(contractID, limit)
}

// ========== Mail Account Repository ==========

// SaveMailAccount grava a conta e invalida o cache da conta padrão.
func (s *Store) SaveMailAccount(account *domain.MailAccount) error {
	if err := s.db.SaveMailAccount(account); err != nil {
		return err
	}
	s.cache.InvalidateDefaultMailAccount()
	return nil
}

// UpdateMailAccount regrava a conta e invalida o cache da conta padrão.
func (s *Store) UpdateMailAccount(account *domain.MailAccount) error {
	if err := s.db.UpdateMailAccount(account); err != nil {
		return err
	}
	s.cache.InvalidateDefaultMailAccount()
	return nil
}

// GetMailAccount delega ao banco.
func (s *Store) GetMailAccount(id string) (*domain.MailAccount, error) {
	return s.db.GetMailAccount(id)
}

// GetDefaultMailAccount busca a conta padrão, preferindo o cache.
func (s *Store) GetDefaultMailAccount() (*domain.MailAccount, error) {
	if account, err := s.cache.GetCachedDefaultMailAccount(); err == nil {
		return account, nil
	}

	account, err := s.db.GetDefaultMailAccount()
	if err != nil {
		return nil, err
	}

	s.cache.CacheDefaultMailAccount(account, defaultAccountTTL)
	return account, nil
}

// ListMailAccounts delega ao banco.
func (s *Store) ListMailAccounts() ([]domain.MailAccount, error) {
	return s.db.ListMailAccounts()
}

// SetDefaultMailAccount troca a conta padrão e invalida o cache.
func (s *Store) SetDefaultMailAccount(id string) error {
	if err := s.db.SetDefaultMailAccount(id); err != nil {
		return err
	}
	return s.cache.InvalidateDefaultMailAccount()
}

// DeleteMailAccount remove a conta e invalida o cache da padrão.
func (s *Store) DeleteMailAccount(id string) error {
	if err := s.db.DeleteMailAccount(id); err != nil {
		return err
	}
	return s.cache.InvalidateDefaultMailAccount()
}

// ========== User Repository ==========

func (s *Store) CreateUser(user *domain.User) error {
	return s.db.CreateUser(user)
}

func (s *Store) GetUserByID(id string) (*domain.User, error) {
	return s.db.GetUserByID(id)
}

func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	return s.db.GetUserByEmail(email)
}

func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	return s.db.GetUserByUsername(username)
}

func (s *Store) UpdateUser(user *domain.User) error {
	return s.db.UpdateUser(user)
}

func (s *Store) UpdateLastLogin(userID string) error {
	return s.db.UpdateLastLogin(userID)
}

func (s *Store) ListUsers(page, pageSize int, search string) ([]domain.User, int, error) {
	return s.db.ListUsers(page, pageSize, search)
}

// ========== Rate Limit Repository ==========

// IncrementRateLimit usa o Redis para o contador valer entre réplicas.
func (s *Store) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	return s.cache.IncrementRateLimit(key, window)
}

// GetRateLimit devolve o contador atual no Redis.
func (s *Store) GetRateLimit(key string) (int64, error) {
	return s.cache.GetRateLimit(key)
}
