package sql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// ========== Contract Repository ==========

const contractColumns = `
	id, subject, body_html, document_type, signatory_name, signatory_tax_id,
	status, signature_expires_at, signature_image, issuer_signature_image, signed_at,
	anchor_hash, anchor_tx_id, anchor_network, anchored_at,
	access_token, signer_ip, created_at, updated_at
`

// SaveContract grava um novo contrato.
func (s *Store) SaveContract(contract *domain.Contract) error {
	query := s.rebind(`
		INSERT INTO contracts (` + contractColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		contract.ID,
		contract.Subject,
		contract.BodyHTML,
		contract.DocumentType,
		contract.SignatoryName,
		contract.SignatoryTaxID,
		contract.Status,
		contract.SignatureExpiresAt,
		contract.SignatureImage,
		contract.IssuerSignatureImage,
		contract.SignedAt,
		contract.AnchorHash,
		contract.AnchorTxID,
		contract.AnchorNetwork,
		contract.AnchoredAt,
		contract.AccessToken,
		contract.SignerIP,
		contract.CreatedAt,
		contract.UpdatedAt,
	)
	return err
}

// GetContract busca um contrato pelo ID.
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	query := s.rebind(`SELECT ` + contractColumns + ` FROM contracts WHERE id = ?`)
	return s.scanContract(s.db.QueryRow(query, id))
}

// GetContractByToken busca um contrato pelo token de resolução.
func (s *Store) GetContractByToken(token string) (*domain.Contract, error) {
	query := s.rebind(`SELECT ` + contractColumns + ` FROM contracts WHERE access_token = ?`)
	return s.scanContract(s.db.QueryRow(query, token))
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
	offset := (page - 1) * pageSize

	var (
		total int
		err   error
	)
	if status != nil {
		err = s.db.QueryRow(s.rebind(`SELECT COUNT(*) FROM contracts WHERE status = ?`), *status).Scan(&total)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM contracts`).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	var rows *sql.Rows
	if status != nil {
		query := s.rebind(`
			SELECT ` + contractColumns + ` FROM contracts
			WHERE status = ?
			ORDER BY created_at DESC
			LIMIT ? OFFSET ?
		`)
		rows, err = s.db.Query(query, *status, pageSize, offset)
	} else {
		query := s.rebind(`
			SELECT ` + contractColumns + ` FROM contracts
			ORDER BY created_at DESC
			LIMIT ? OFFSET ?
		`)
		rows, err = s.db.Query(query, pageSize, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contracts := make([]domain.Contract, 0, pageSize)
	for rows.Next() {
		contract, err := s.scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		contracts = append(contracts, *contract)
	}
	return contracts, total, rows.Err()
}

// UpdateContract substitui os campos mutáveis de um contrato existente.
func (s *Store) UpdateContract(contract *domain.Contract) error {
	query := s.rebind(`
		UPDATE contracts SET
			subject = ?, body_html = ?, document_type = ?,
			signatory_name = ?, signatory_tax_id = ?,
			status = ?, signature_expires_at = ?, signature_image = ?,
			issuer_signature_image = ?, signed_at = ?,
			anchor_hash = ?, anchor_tx_id = ?, anchor_network = ?, anchored_at = ?,
			signer_ip = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.Exec(query,
		contract.Subject,
		contract.BodyHTML,
		contract.DocumentType,
		contract.SignatoryName,
		contract.SignatoryTaxID,
		contract.Status,
		contract.SignatureExpiresAt,
		contract.SignatureImage,
		contract.IssuerSignatureImage,
		contract.SignedAt,
		contract.AnchorHash,
		contract.AnchorTxID,
		contract.AnchorNetwork,
		contract.AnchoredAt,
		contract.SignerIP,
		contract.UpdatedAt,
		contract.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrContractNotFound
	}
	return nil
}

// MarkExpiredContracts marca como expirados os contratos pendentes com prazo
// de assinatura anterior a before. Devolve a quantidade alterada.
func (s *Store) MarkExpiredContracts(before time.Time) (int, error) {
	query := s.rebind(`
		UPDATE contracts
		SET status = ?, updated_at = ?
		WHERE status = ? AND signature_expires_at IS NOT NULL AND signature_expires_at < ?
	`)
	result, err := s.db.Exec(query, domain.SignatureExpired, before, domain.SignaturePending, before)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

// rowScanner cobre sql.Row e sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanContract(row rowScanner) (*domain.Contract, error) {
	var (
		contract    domain.Contract
		expiresAt   sql.NullTime
		sigImage    sql.NullString
		issuerImage sql.NullString
		signedAt    sql.NullTime
		anchorHash  sql.NullString
		anchorTx    sql.NullString
		anchorNet   sql.NullString
		anchoredAt  sql.NullTime
	)

	err := row.Scan(
		&contract.ID,
		&contract.Subject,
		&contract.BodyHTML,
		&contract.DocumentType,
		&contract.SignatoryName,
		&contract.SignatoryTaxID,
		&contract.Status,
		&expiresAt,
		&sigImage,
		&issuerImage,
		&signedAt,
		&anchorHash,
		&anchorTx,
		&anchorNet,
		&anchoredAt,
		&contract.AccessToken,
		&contract.SignerIP,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContractNotFound
		}
		return nil, err
	}

	if expiresAt.Valid {
		contract.SignatureExpiresAt = &expiresAt.Time
	}
	if sigImage.Valid {
		contract.SignatureImage = &sigImage.String
	}
	if issuerImage.Valid {
		contract.IssuerSignatureImage = &issuerImage.String
	}
	if signedAt.Valid {
		contract.SignedAt = &signedAt.Time
	}
	if anchorHash.Valid {
		contract.AnchorHash = &anchorHash.String
	}
	if anchorTx.Valid {
		contract.AnchorTxID = &anchorTx.String
	}
	if anchorNet.Valid {
		contract.AnchorNetwork = &anchorNet.String
	}
	if anchoredAt.Valid {
		contract.AnchoredAt = &anchoredAt.Time
	}

	return &contract, nil
}

// ========== Audit Repository ==========

// AppendAuditEntry anexa uma entrada à trilha de auditoria do contrato.
func (s *Store) AppendAuditEntry(entry *domain.AuditLogEntry) error {
	var eventData []byte
	if entry.EventData != nil {
		var err error
		eventData, err = json.Marshal(entry.EventData)
		if err != nil {
			return err
		}
	}

	query := s.rebind(`
		INSERT INTO audit_log_entries (id, contract_id, event_type, event_data, actor_ip, actor_user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		entry.ID,
		entry.ContractID,
		entry.EventType,
		eventData,
		entry.ActorIP,
		entry.ActorUserAgent,
		entry.CreatedAt,
	)
	return err
}

// ListAuditEntries devolve as entradas mais recentes da trilha do contrato.
func (s *Store) ListAuditEntries(contractID string, limit int) ([]domain.AuditLogEntry, error) {
	if limit < 1 {
		limit = 100
	}
	query := s.rebind(`
		SELECT id, contract_id, event_type, event_data, actor_ip, actor_user_agent, created_at
		FROM audit_log_entries
		WHERE contract_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`)
	rows, err := s.db.Query(query, contractID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0, limit)
	for rows.Next() {
		var (
			entry     domain.AuditLogEntry
			eventData []byte
		)
		err := rows.Scan(
			&entry.ID,
			&entry.ContractID,
			&entry.EventType,
			&eventData,
			&entry.ActorIP,
			&entry.ActorUserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(eventData) > 0 {
			if err := json.Unmarshal(eventData, &entry.EventData); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
