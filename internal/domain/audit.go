package domain

import (
	"time"
)

// Tipos de evento registrados na trilha de auditoria.
const (
	AuditEventLinkAccessed   = "link_accessed"
	AuditEventContractSigned = "contract_signed"
)

// AuditLogEntry é o registro imutável de um evento de acesso ou de ciclo de
// vida de um contrato. Entradas são apenas anexadas; nunca alteradas ou
// removidas pelo backend.
type AuditLogEntry struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ContractID     string         `json:"contractId" gorm:"type:varchar(36);index;not null"`
	EventType      string         `json:"eventType" gorm:"type:varchar(50);index"`
	EventData      map[string]any `json:"eventData,omitempty" gorm:"serializer:json"`
	ActorIP        string         `json:"actorIp" gorm:"type:varchar(45)"`
	ActorUserAgent string         `json:"actorUserAgent" gorm:"type:varchar(512)"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// TruncateToken reduz o token ao prefixo registrado em auditoria.
// O valor completo nunca é gravado.
func TruncateToken(token string) string {
	const prefixLen = 8
	if len(token) <= prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
