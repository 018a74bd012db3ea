package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
	"github.com/Davilys/webmarcas1-sub006/internal/pool"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

var (
	// ErrTokenMissing requisição de resolução sem token
	ErrTokenMissing = errors.New("token não informado")
	// ErrContractNotFound token desconhecido ou malformado; resposta única
	// para impedir enumeração de tokens
	ErrContractNotFound = errors.New("contrato não encontrado")
	// ErrContractExpired janela de assinatura encerrada
	ErrContractExpired = errors.New("contrato expirado")
	// ErrContractNotPending contrato já assinado ou fora do estado pendente
	ErrContractNotPending = errors.New("contrato não está pendente de assinatura")
	// ErrSignatureMissing assinatura ausente na requisição
	ErrSignatureMissing = errors.New("assinatura não informada")
)

const accessTokenLength = 40

// ContractNotifier publica eventos do ciclo de assinatura para os painéis
// conectados. Implementado pelo hub websocket.
type ContractNotifier interface {
	PublishContractEvent(contractID, eventType string, data map[string]any)
}

// ContractService encapsula a emissão, resolução pública e assinatura de
// contratos de registro de marca.
type ContractService struct {
	contracts storage.ContractRepository
	audits    storage.AuditRepository
	tasks     *pool.WorkerPool
	notifier  ContractNotifier
	log       *zap.Logger
	now       func() time.Time
}

// NewContractService cria o serviço de contratos. notifier pode ser nulo.
func NewContractService(
	contracts storage.ContractRepository,
	audits storage.AuditRepository,
	tasks *pool.WorkerPool,
	notifier ContractNotifier,
	log *zap.Logger,
) *ContractService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContractService{
		contracts: contracts,
		audits:    audits,
		tasks:     tasks,
		notifier:  notifier,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AccessMeta identifica quem acessou o link de assinatura.
type AccessMeta struct {
	IP        string
	UserAgent string
}

func (m AccessMeta) ip() string {
	if strings.TrimSpace(m.IP) == "" {
		return "unknown"
	}
	return m.IP
}

func (m AccessMeta) userAgent() string {
	if strings.TrimSpace(m.UserAgent) == "" {
		return "unknown"
	}
	return m.UserAgent
}

// CreateContractInput define os dados de emissão de um contrato.
type CreateContractInput struct {
	Subject        string
	BodyHTML       string
	DocumentType   string
	SignatoryName  string
	SignatoryTaxID string
	// SignatureDays prazo em dias para assinatura; zero emite sem prazo.
	SignatureDays int
	// IssuerSignatureImage assinatura da empresa, em data URL.
	IssuerSignatureImage *string
}

// Create emite um contrato com token de acesso único. O token é devolvido
// apenas aqui; depois da emissão ele nunca é reexposto pela API.
func (s *ContractService) Create(ctx context.Context, input CreateContractInput) (*domain.Contract, error) {
	if strings.TrimSpace(input.SignatoryName) == "" {
		return nil, fmt.Errorf("nome do contratante é obrigatório")
	}
	if input.SignatoryTaxID != "" {
		if err := domain.ValidateTaxID(input.SignatoryTaxID); err != nil {
			return nil, err
		}
	}

	token, err := generateAccessToken(accessTokenLength)
	if err != nil {
		return nil, fmt.Errorf("falha ao gerar o token de acesso: %w", err)
	}

	now := s.now()
	contract := &domain.Contract{
		ID:                   uuid.NewString(),
		Subject:              strings.TrimSpace(input.Subject),
		BodyHTML:             input.BodyHTML,
		DocumentType:         input.DocumentType,
		SignatoryName:        strings.TrimSpace(input.SignatoryName),
		SignatoryTaxID:       input.SignatoryTaxID,
		Status:               domain.SignaturePending,
		IssuerSignatureImage: input.IssuerSignatureImage,
		AccessToken:          token,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if input.SignatureDays > 0 {
		expiresAt := now.AddDate(0, 0, input.SignatureDays)
		contract.SignatureExpiresAt = &expiresAt
	}

	if err := s.contracts.SaveContract(contract); err != nil {
		return nil, fmt.Errorf("falha ao gravar o contrato: %w", err)
	}

	monitoring.ContractsIssued.Inc()
	s.log.Info("contrato emitido",
		zap.String("contract_id", contract.ID),
		zap.String("document_type", contract.DocumentType),
	)
	return contract, nil
}

// Resolve localiza o contrato pelo token do link de assinatura.
//
// Token desconhecido, malformado ou falha de consulta devolvem o mesmo
// ErrContractNotFound; o chamador não consegue distinguir tokens válidos. O
// acesso bem-sucedido gera uma entrada de auditoria em segundo plano e nunca
// bloqueia nem falha a resolução.
func (s *ContractService) Resolve(ctx context.Context, token string, meta AccessMeta) (*domain.Contract, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}
	if err := domain.ValidateToken(token); err != nil {
		return nil, ErrContractNotFound
	}

	contract, err := s.contracts.GetContractByToken(token)
	if err != nil {
		if !errors.Is(err, storage.ErrContractNotFound) {
			s.log.Error("falha ao consultar contrato por token", zap.Error(err))
		}
		return nil, ErrContractNotFound
	}

	if contract.Status == domain.SignatureExpired || contract.IsExpired(s.now()) {
		return nil, ErrContractExpired
	}

	monitoring.ContractsResolved.Inc()
	s.appendAuditAsync(&domain.AuditLogEntry{
		ID:         uuid.NewString(),
		ContractID: contract.ID,
		EventType:  domain.AuditEventLinkAccessed,
		EventData: map[string]any{
			"token_prefix": domain.TruncateToken(token),
		},
		ActorIP:        meta.ip(),
		ActorUserAgent: meta.userAgent(),
		CreatedAt:      s.now(),
	})

	return contract, nil
}

// SignInput define os dados de assinatura de um contrato.
type SignInput struct {
	Token          string
	SignatureImage string // data URL produzido pelo quadro de assinatura
	Meta           AccessMeta
}

// Sign registra a assinatura do contratante em um contrato pendente.
func (s *ContractService) Sign(ctx context.Context, input SignInput) (*domain.Contract, error) {
	if strings.TrimSpace(input.SignatureImage) == "" {
		return nil, ErrSignatureMissing
	}

	contract, err := s.Resolve(ctx, input.Token, input.Meta)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !contract.CanSign(now) {
		return nil, ErrContractNotPending
	}

	signature := input.SignatureImage
	contract.SignatureImage = &signature
	contract.SignedAt = &now
	contract.Status = domain.SignatureSigned
	contract.SignerIP = input.Meta.ip()
	contract.UpdatedAt = now

	if err := s.contracts.UpdateContract(contract); err != nil {
		return nil, fmt.Errorf("falha ao gravar a assinatura: %w", err)
	}

	monitoring.ContractsSigned.Inc()
	s.log.Info("contrato assinado",
		zap.String("contract_id", contract.ID),
		zap.String("signer_ip", contract.SignerIP),
	)

	s.appendAuditAsync(&domain.AuditLogEntry{
		ID:         uuid.NewString(),
		ContractID: contract.ID,
		EventType:  domain.AuditEventContractSigned,
		EventData: map[string]any{
			"token_prefix": domain.TruncateToken(input.Token),
		},
		ActorIP:        input.Meta.ip(),
		ActorUserAgent: input.Meta.userAgent(),
		CreatedAt:      now,
	})

	if s.notifier != nil {
		s.notifier.PublishContractEvent(contract.ID, domain.AuditEventContractSigned, map[string]any{
			"signedAt": now,
		})
	}

	return contract, nil
}

// Get busca um contrato pelo ID (uso administrativo).
func (s *ContractService) Get(ctx context.Context, id string) (*domain.Contract, error) {
	contract, err := s.contracts.GetContract(id)
	if err != nil {
		if errors.Is(err, storage.ErrContractNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}

// List devolve uma página de contratos (uso administrativo).
func (s *ContractService) List(ctx context.Context, page, pageSize int, status *domain.SignatureStatus) ([]domain.Contract, int, error) {
	return s.contracts.ListContracts(page, pageSize, status)
}

// MarkExpired marca como expirados os contratos pendentes com prazo vencido.
// Executado periodicamente pelo processo principal.
func (s *ContractService) MarkExpired(ctx context.Context) (int, error) {
	count, err := s.contracts.MarkExpiredContracts(s.now())
	if err != nil {
		return 0, fmt.Errorf("falha ao expirar contratos: %w", err)
	}
	if count > 0 {
		monitoring.ContractsExpired.Add(float64(count))
		s.log.Info("contratos expirados pela varredura", zap.Int("count", count))
	}
	return count, nil
}

// ListAuditEntries devolve a trilha de auditoria do contrato (uso
// administrativo).
func (s *ContractService) ListAuditEntries(ctx context.Context, contractID string, limit int) ([]domain.AuditLogEntry, error) {
	return s.audits.ListAuditEntries(contractID, limit)
}

// appendAuditAsync grava a entrada em segundo plano. A trilha é melhor
// esforço: fila cheia ou falha de gravação são registradas e contadas, nunca
// propagadas.
func (s *ContractService) appendAuditAsync(entry *domain.AuditLogEntry) {
	write := func() {
		if err := s.audits.AppendAuditEntry(entry); err != nil {
			monitoring.AuditWriteFailures.Inc()
			s.log.Warn("falha ao gravar entrada de auditoria",
				zap.String("contract_id", entry.ContractID),
				zap.String("event_type", entry.EventType),
				zap.Error(err),
			)
		}
	}

	if s.tasks == nil {
		write()
		return
	}
	if !s.tasks.TrySubmit(write) {
		monitoring.AuditWriteFailures.Inc()
		s.log.Warn("fila de auditoria cheia; entrada descartada",
			zap.String("contract_id", entry.ContractID),
			zap.String("event_type", entry.EventType),
		)
	}

	if s.notifier != nil && entry.EventType == domain.AuditEventLinkAccessed {
		s.notifier.PublishContractEvent(entry.ContractID, entry.EventType, map[string]any{
			"actorIp": entry.ActorIP,
		})
	}
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateAccessToken gera um token alfanumérico com aleatoriedade
// criptográfica; o token equivale a uma credencial de acesso ao contrato.
func generateAccessToken(length int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
