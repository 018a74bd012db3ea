package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
)

// A trilha de auditoria recebe uma escrita por acesso a link, o caminho mais
// quente do serviço. Em PostgreSQL essas operações vão direto ao pool pgx;
// em MySQL caem no GORM.

// AppendAuditEntry anexa uma entrada à trilha do contrato.
func (s *Store) AppendAuditEntry(entry *domain.AuditLogEntry) error {
	if s.pgx == nil {
		return s.db.Create(entry).Error
	}

	var eventData []byte
	if entry.EventData != nil {
		var err error
		eventData, err = json.Marshal(entry.EventData)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pgx.Pool().Exec(ctx, `
		INSERT INTO audit_log_entries (id, contract_id, event_type, event_data, actor_ip, actor_user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ContractID, entry.EventType, eventData, entry.ActorIP, entry.ActorUserAgent, entry.CreatedAt)
	return err
}

// ListAuditEntries devolve as entradas mais recentes da trilha do contrato.
func (s *Store) ListAuditEntries(contractID string, limit int) ([]domain.AuditLogEntry, error) {
	if limit < 1 {
		limit = 100
	}

	if s.pgx == nil {
		var entries []domain.AuditLogEntry
		err := s.db.Where("contract_id = ?", contractID).
			Order("created_at DESC").
			Limit(limit).
			Find(&entries).Error
		return entries, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.pgx.Pool().Query(ctx, `
		SELECT id, contract_id, event_type, event_data, actor_ip, actor_user_agent, created_at
		FROM audit_log_entries
		WHERE contract_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, contractID, limit)
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
		if err := rows.Scan(
			&entry.ID,
			&entry.ContractID,
			&entry.EventType,
			&eventData,
			&entry.ActorIP,
			&entry.ActorUserAgent,
			&entry.CreatedAt,
		); err != nil {
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

// ========== Rate Limit Repository ==========

// IncrementRateLimit incrementa o contador da chave dentro da janela dada,
// com upsert atômico quando o banco é PostgreSQL.
func (s *Store) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	now := time.Now().UTC()

	if s.pgx == nil {
		return s.incrementRateLimitGorm(key, window, now)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int64
	err := s.pgx.Pool().QueryRow(ctx, `
		INSERT INTO rate_limits (key, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN rate_limits.expires_at < $3 THEN 1 ELSE rate_limits.count + 1 END,
			expires_at = CASE WHEN rate_limits.expires_at < $3 THEN $2 ELSE rate_limits.expires_at END
		RETURNING count
	`, key, now.Add(window), now).Scan(&count)
	return count, err
}

// GetRateLimit devolve o contador atual da chave.
func (s *Store) GetRateLimit(key string) (int64, error) {
	now := time.Now().UTC()

	if s.pgx == nil {
		var row rateLimitRow
		err := s.db.Table("rate_limits").Where("key = ?", key).Take(&row).Error
		if err != nil || now.After(row.ExpiresAt) {
			return 0, nil
		}
		return row.Count, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int64
	err := s.pgx.Pool().QueryRow(ctx, `
		SELECT count FROM rate_limits WHERE key = $1 AND expires_at >= $2
	`, key, now).Scan(&count)
	if err != nil {
		return 0, nil
	}
	return count, nil
}

type rateLimitRow struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index"`
}

func (rateLimitRow) TableName() string { return "rate_limits" }

func (s *Store) incrementRateLimitGorm(key string, window time.Duration, now time.Time) (int64, error) {
	var row rateLimitRow
	err := s.db.Table("rate_limits").Where("key = ?", key).Take(&row).Error
	if err != nil || now.After(row.ExpiresAt) {
		row = rateLimitRow{Key: key, Count: 1, ExpiresAt: now.Add(window)}
		if err := s.db.Save(&row).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	row.Count++
	if err := s.db.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.Count, nil
}
