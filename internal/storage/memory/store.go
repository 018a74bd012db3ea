package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// Store guarda contratos, auditoria, contas de envio e usuários em memória.
// Usado em desenvolvimento e como fixture determinística nos testes.
type Store struct {
	mu sync.RWMutex

	contracts map[string]*domain.Contract
	byToken   map[string]string // token -> contractID

	audits map[string][]*domain.AuditLogEntry // contractID -> entradas em ordem de chegada

	accounts map[string]*domain.MailAccount

	users      map[string]*domain.User
	byEmail    map[string]string // email -> userID
	byUsername map[string]string // username -> userID

	rateLimits map[string]*rateLimitEntry
}

// rateLimitEntry contador de limitação de taxa
type rateLimitEntry struct {
	Count     int64
	ExpiresAt time.Time
}

// NewStore cria uma instância de armazenamento em memória.
func NewStore() *Store {
	return &Store{
		contracts:  make(map[string]*domain.Contract),
		byToken:    make(map[string]string),
		audits:     make(map[string][]*domain.AuditLogEntry),
		accounts:   make(map[string]*domain.MailAccount),
		users:      make(map[string]*domain.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		rateLimits: make(map[string]*rateLimitEntry),
	}
}

// ========== Contract Repository ==========

// SaveContract grava um contrato e indexa seu token de acesso.
func (s *Store) SaveContract(contract *domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *contract
	s.contracts[contract.ID] = &copied
	if contract.AccessToken != "" {
		s.byToken[contract.AccessToken] = contract.ID
	}
	return nil
}

// GetContract busca um contrato pelo ID.
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, storage.ErrContractNotFound
	}
	copied := *contract
	return &copied, nil
}

// GetContractByToken busca um contrato pelo token de resolução.
func (s *Store) GetContractByToken(token string) (*domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, storage.ErrContractNotFound
	}
	contract, ok := s.contracts[id]
	if !ok {
		return nil, storage.ErrContractNotFound
	}
	copied := *contract
	return &copied, nil
}

// ListContracts devolve uma página de contratos ordenada por criação
// decrescente, com filtro opcional de status.
func (s *Store) ListContracts(page, pageSize int, status *domain.SignatureStatus) ([]domain.Contract, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		if status != nil && c.Status != *status {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Contract{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// UpdateContract substitui um contrato existente.
func (s *Store) UpdateContract(contract *domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[contract.ID]; !ok {
		return storage.ErrContractNotFound
	}
	copied := *contract
	s.contracts[contract.ID] = &copied
	return nil
}

// MarkExpiredContracts marca como expirados os contratos pendentes cujo prazo
// de assinatura passou. Devolve a quantidade alterada.
func (s *Store) MarkExpiredContracts(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, c := range s.contracts {
		if c.Status == domain.SignaturePending && c.SignatureExpiresAt != nil && c.SignatureExpiresAt.Before(before) {
			c.Status = domain.SignatureExpired
			c.UpdatedAt = before
			count++
		}
	}
	return count, nil
}

// ========== Audit Repository ==========

// AppendAuditEntry anexa uma entrada à trilha do contrato.
func (s *Store) AppendAuditEntry(entry *domain.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.audits[entry.ContractID] = append(s.audits[entry.ContractID], &copied)
	return nil
}

// ListAuditEntries devolve as entradas mais recentes do contrato.
func (s *Store) ListAuditEntries(contractID string, limit int) ([]domain.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audits[contractID]
	out := make([]domain.AuditLogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, *entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ========== Mail Account Repository ==========

// SaveMailAccount grava uma conta de envio. Se marcada como padrão, remove a
// marcação das demais para manter o invariante de padrão único.
func (s *Store) SaveMailAccount(account *domain.MailAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.IsDefault {
		for _, a := range s.accounts {
			a.IsDefault = false
		}
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

// UpdateMailAccount regrava uma conta existente, mantendo o padrão único.
func (s *Store) UpdateMailAccount(account *domain.MailAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; !ok {
		return storage.ErrMailAccountNotFound
	}
	if account.IsDefault {
		for _, a := range s.accounts {
			a.IsDefault = false
		}
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

// GetMailAccount busca uma conta pelo ID.
func (s *Store) GetMailAccount(id string) (*domain.MailAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, storage.ErrMailAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// GetDefaultMailAccount devolve a conta marcada como padrão. Falha fechada
// quando nenhuma conta está marcada.
func (s *Store) GetDefaultMailAccount() (*domain.MailAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if account.IsDefault {
			copied := *account
			return &copied, nil
		}
	}
	return nil, storage.ErrNoDefaultMailAccount
}

// ListMailAccounts devolve todas as contas ordenadas por criação.
func (s *Store) ListMailAccounts() ([]domain.MailAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MailAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, *account)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SetDefaultMailAccount torna a conta id a única padrão.
func (s *Store) SetDefaultMailAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.accounts[id]
	if !ok {
		return storage.ErrMailAccountNotFound
	}
	for _, account := range s.accounts {
		account.IsDefault = false
	}
	target.IsDefault = true
	return nil
}

// DeleteMailAccount remove uma conta de envio.
func (s *Store) DeleteMailAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return storage.ErrMailAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

// ========== User Repository ==========

// CreateUser cadastra um usuário do painel.
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return storage.ErrEmailExists
	}

	copied := *user
	s.users[user.ID] = &copied
	s.byEmail[email] = user.ID
	if user.Username != "" {
		s.byUsername[strings.ToLower(user.Username)] = user.ID
	}
	return nil
}

// GetUserByID busca um usuário pelo ID.
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetUserByEmail busca um usuário pelo email.
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

// GetUserByUsername busca um usuário pelo nome de usuário.
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

// UpdateUser substitui um usuário existente.
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}
	// Reindexa email e username se mudaram.
	if !strings.EqualFold(existing.Email, user.Email) {
		delete(s.byEmail, strings.ToLower(existing.Email))
		s.byEmail[strings.ToLower(user.Email)] = user.ID
	}
	if !strings.EqualFold(existing.Username, user.Username) {
		delete(s.byUsername, strings.ToLower(existing.Username))
		if user.Username != "" {
			s.byUsername[strings.ToLower(user.Username)] = user.ID
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// UpdateLastLogin registra o instante do último acesso.
func (s *Store) UpdateLastLogin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	return nil
}

// ListUsers devolve uma página de usuários com busca opcional por email ou
// nome de usuário.
func (s *Store) ListUsers(page, pageSize int, search string) ([]domain.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	all := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Email), search) &&
			!strings.Contains(strings.ToLower(user.Username), search) {
			continue
		}
		all = append(all, *user)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.User{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// ========== Rate Limit Repository ==========

// IncrementRateLimit incrementa o contador da chave dentro da janela dada.
func (s *Store) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.rateLimits[key]
	if !ok || now.After(entry.ExpiresAt) {
		entry = &rateLimitEntry{ExpiresAt: now.Add(window)}
		s.rateLimits[key] = entry
	}
	entry.Count++
	return entry.Count, nil
}

// GetRateLimit devolve o contador atual da chave.
func (s *Store) GetRateLimit(key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.rateLimits[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return 0, nil
	}
	return entry.Count, nil
}

// Close não possui recursos a liberar em memória.
func (s *Store) Close() error {
	return nil
}

// Health em memória está sempre saudável.
func (s *Store) Health() error {
	return nil
}
