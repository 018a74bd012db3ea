package domain

import (
	"time"
)

// SignatureStatus representa o estado do ciclo de assinatura de um contrato.
type SignatureStatus string

const (
	// SignaturePending aguardando assinatura do contratante
	SignaturePending SignatureStatus = "pending"
	// SignatureSigned contrato assinado
	SignatureSigned SignatureStatus = "signed"
	// SignatureExpired janela de assinatura encerrada
	SignatureExpired SignatureStatus = "expired"
)

// Contract representa o contrato de registro de marca enviado para assinatura.
//
// O campo AccessToken é gravado uma única vez na emissão do link e serve
// exclusivamente para a resolução pública do contrato; nunca é reemitido.
type Contract struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Subject      string `json:"subject" gorm:"type:varchar(255)"`
	BodyHTML     string `json:"bodyHtml" gorm:"type:text"`
	DocumentType string `json:"documentType" gorm:"type:varchar(50);index"`

	// Dados do signatário
	SignatoryName  string `json:"signatoryName" gorm:"type:varchar(255)"`
	SignatoryTaxID string `json:"signatoryTaxId" gorm:"type:varchar(20)"` // CPF ou CNPJ

	// Ciclo de assinatura
	Status               SignatureStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	SignatureExpiresAt   *time.Time      `json:"signatureExpiresAt,omitempty"`
	SignatureImage       *string         `json:"signatureImage,omitempty" gorm:"type:text"`       // assinatura do contratante (data URL)
	IssuerSignatureImage *string         `json:"issuerSignatureImage,omitempty" gorm:"type:text"` // assinatura da empresa (data URL)
	SignedAt             *time.Time      `json:"signedAt,omitempty"`

	// Metadados de ancoragem preenchidos por serviço externo após o registro.
	// O backend apenas armazena os valores; a ancoragem em si está fora de escopo.
	AnchorHash    *string    `json:"anchorHash,omitempty" gorm:"type:varchar(128)"`
	AnchorTxID    *string    `json:"anchorTxId,omitempty" gorm:"type:varchar(128)"`
	AnchorNetwork *string    `json:"anchorNetwork,omitempty" gorm:"type:varchar(50)"`
	AnchoredAt    *time.Time `json:"anchoredAt,omitempty"`

	// Metadados de acesso
	AccessToken string `json:"-" gorm:"type:varchar(64);uniqueIndex"`
	SignerIP    string `json:"-" gorm:"type:varchar(45)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsExpired indica se a janela de assinatura já se encerrou no instante now.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.SignatureExpiresAt != nil && c.SignatureExpiresAt.Before(now)
}

// CanSign indica se o contrato ainda aceita assinatura.
func (c *Contract) CanSign(now time.Time) bool {
	return c.Status == SignaturePending && !c.IsExpired(now)
}
