package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// Store implementação de armazenamento sobre GORM. Quando conectado ao
// PostgreSQL, a trilha de auditoria e os contadores de limitação de taxa usam
// o pool pgx diretamente (ver audit.go).
type Store struct {
	db  *gorm.DB
	pgx *Client // nulo quando o banco é MySQL
}

// NewStore cria uma instância de armazenamento PostgreSQL.
func NewStore(dsn string) (*Store, error) {
	store, err := newStoreWithDialector(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}

	client, err := NewClient(dsn, 25, 5, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("falha ao inicializar o pool pgx: %w", err)
	}
	store.pgx = client
	return store, nil
}

// NewMySQLStore cria uma instância de armazenamento MySQL.
func NewMySQLStore(dsn string) (*Store, error) {
	return newStoreWithDialector(mysql.Open(dsn))
}

func newStoreWithDialector(dialector gorm.Dialector) (*Store, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao obter o sql.DB subjacente: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("falha ao migrar o banco de dados: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.Contract{},
		&domain.AuditLogEntry{},
		&domain.MailAccount{},
		&domain.User{},
		&rateLimitRow{},
	)
}

// Close fecha as conexões com o banco.
func (s *Store) Close() error {
	if s.pgx != nil {
		s.pgx.Close()
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health verifica a saúde da conexão.
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ========== Contract Repository ==========

// SaveContract grava um novo contrato.
func (s *Store) SaveContract(contract *domain.Contract) error {
	return s.db.Create(contract).Error
}

// GetContract busca um contrato pelo ID.
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	var contract domain.Contract
	err := s.db.Where("id = ?", id).First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrContractNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// GetContractByToken busca um contrato pelo token de resolução.
func (s *Store) GetContractByToken(token string) (*domain.Contract, error) {
	var contract domain.Contract
	err := s.db.Where("access_token = ?", token).First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrContractNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// ListContracts devolve uma página de contratos ordenada por criação
// decrescente, com filtro opcional de status.
func (s *Store) ListContracts(page, pageSize int, status *domain.SignatureStatus) ([]domain.Contract, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := s.db.Model(&domain.Contract{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("falha ao contar contratos: %w", err)
	}

	var contracts []domain.Contract
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&contracts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("falha ao listar contratos: %w", err)
	}

	return contracts, int(total), nil
}

// UpdateContract substitui um contrato existente.
func (s *Store) UpdateContract(contract *domain.Contract) error {
	result := s.db.Model(&domain.Contract{}).Where("id = ?", contract.ID).Updates(map[string]any{
		"subject":                contract.Subject,
		"body_html":              contract.BodyHTML,
		"document_type":          contract.DocumentType,
		"signatory_name":         contract.SignatoryName,
		"signatory_tax_id":       contract.SignatoryTaxID,
		"status":                 contract.Status,
		"signature_expires_at":   contract.SignatureExpiresAt,
		"signature_image":        contract.SignatureImage,
		"issuer_signature_image": contract.IssuerSignatureImage,
		"signed_at":              contract.SignedAt,
		"anchor_hash":            contract.AnchorHash,
		"anchor_tx_id":           contract.AnchorTxID,
		"anchor_network":         contract.AnchorNetwork,
		"anchored_at":            contract.AnchoredAt,
		"signer_ip":              contract.SignerIP,
		"updated_at":             contract.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrContractNotFound
	}
	return nil
}

// MarkExpiredContracts marca como expirados os contratos pendentes com prazo
// de assinatura anterior a before.
func (s *Store) MarkExpiredContracts(before time.Time) (int, error) {
	result := s.db.Model(&domain.Contract{}).
		Where("status = ? AND signature_expires_at IS NOT NULL AND signature_expires_at < ?",
			domain.SignaturePending, before).
		Updates(map[string]any{
			"status":     domain.SignatureExpired,
			"updated_at": before,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// ========== Mail Account Repository ==========

// SaveMailAccount grava uma conta de envio, garantindo padrão único.
func (s *Store) SaveMailAccount(account *domain.MailAccount) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if account.IsDefault {
			if err := tx.Model(&domain.MailAccount{}).
				Where("id <> ?", account.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(account).Error
	})
}

// UpdateMailAccount regrava uma conta existente, garantindo padrão único.
func (s *Store) UpdateMailAccount(account *domain.MailAccount) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if account.IsDefault {
			if err := tx.Model(&domain.MailAccount{}).
				Where("id <> ?", account.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		result := tx.Model(&domain.MailAccount{}).
			Where("id = ?", account.ID).
			Select("host", "port", "username", "password", "from_name", "is_default", "updated_at").
			Updates(account)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrMailAccountNotFound
		}
		return nil
	})
}

// GetMailAccount busca uma conta pelo ID.
func (s *Store) GetMailAccount(id string) (*domain.MailAccount, error) {
	var account domain.MailAccount
	err := s.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrMailAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetDefaultMailAccount devolve a conta marcada como padrão.
func (s *Store) GetDefaultMailAccount() (*domain.MailAccount, error) {
	var account domain.MailAccount
	err := s.db.Where("is_default = ?", true).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNoDefaultMailAccount
		}
		return nil, err
	}
	return &account, nil
}

// ListMailAccounts devolve todas as contas ordenadas por criação.
func (s *Store) ListMailAccounts() ([]domain.MailAccount, error) {
	var accounts []domain.MailAccount
	err := s.db.Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

// SetDefaultMailAccount torna a conta id a única padrão.
func (s *Store) SetDefaultMailAccount(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.MailAccount{}).Where("id = ?", id).Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrMailAccountNotFound
		}
		return tx.Model(&domain.MailAccount{}).
			Where("id <> ?", id).
			Update("is_default", false).Error
	})
}

// DeleteMailAccount remove uma conta de envio.
func (s *Store) DeleteMailAccount(id string) error {
	result := s.db.Where("id = ?", id).Delete(&domain.MailAccount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrMailAccountNotFound
	}
	return nil
}

// ========== User Repository ==========

// CreateUser cadastra um usuário do painel.
func (s *Store) CreateUser(user *domain.User) error {
	var count int64
	if err := s.db.Model(&domain.User{}).
		Where("lower(email) = lower(?)", user.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrEmailExists
	}
	return s.db.Create(user).Error
}

// GetUserByID busca um usuário pelo ID.
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	var user domain.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail busca um usuário pelo email.
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := s.db.Where("lower(email) = lower(?)", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername busca um usuário pelo nome de usuário.
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := s.db.Where("lower(username) = lower(?)", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser substitui um usuário existente.
func (s *Store) UpdateUser(user *domain.User) error {
	result := s.db.Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":         user.Email,
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"updated_at":    user.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin registra o instante do último acesso.
func (s *Store) UpdateLastLogin(userID string) error {
	result := s.db.Model(&domain.User{}).
		Where("id = ?", userID).
		Update("last_login_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// ListUsers devolve uma página de usuários com busca opcional.
func (s *Store) ListUsers(page, pageSize int, search string) ([]domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := s.db.Model(&domain.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("email LIKE ? OR username LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("falha ao contar usuários: %w", err)
	}

	var users []domain.User
	err := query.
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("falha ao listar usuários: %w", err)
	}

	return users, int(total), nil
}
