package httptransport

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
)

// ContractHandler trata as rotas de contratos de assinatura
type ContractHandler struct {
	contracts     *service.ContractService
	publicBaseURL string
	log           *zap.Logger
}

// NewContractHandler cria o handler de contratos
//
// Parâmetros:
//   - contracts: serviço de contratos
//   - publicBaseURL: URL base usada para montar o link público de assinatura
//   - log: logger estruturado
func NewContractHandler(contracts *service.ContractService, publicBaseURL string, log *zap.Logger) *ContractHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContractHandler{
		contracts:     contracts,
		publicBaseURL: publicBaseURL,
		log:           log,
	}
}

func accessMeta(c *gin.Context) service.AccessMeta {
	return service.AccessMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

type resolveContractRequest struct {
	Token string `json:"token"`
}

type signContractRequest struct {
	Token          string `json:"token"`
	SignatureImage string `json:"signatureImage"`
}

// Resolve godoc
// @Summary Resolver o link de assinatura
// @Description Resolve o token recebido no link e devolve o contrato pendente (rota pública)
// @Tags Público
// @Accept json
// @Produce json
// @Param request body resolveContractRequest true "Token de acesso"
// @Success 200 {object} Response{data=domain.Contract}
// @Failure 400 {object} Response "Token não informado"
// @Failure 404 {object} Response "Link inválido"
// @Failure 410 {object} Response "Prazo de assinatura expirado"
// @Router /v1/public/contracts/resolve [post]
func (h *ContractHandler) Resolve(c *gin.Context) {
	var req resolveContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	contract, err := h.contracts.Resolve(c.Request.Context(), req.Token, accessMeta(c))
	if err != nil {
		h.respondContractError(c, err, MsgContractGetFailed)
		return
	}

	Success(c, contract)
}

// Sign godoc
// @Summary Assinar o contrato
// @Description Registra a assinatura manuscrita do contratante (rota pública)
// @Tags Público
// @Accept json
// @Produce json
// @Param request body signContractRequest true "Token e assinatura em data URL"
// @Success 200 {object} Response{data=domain.Contract}
// @Failure 400 {object} Response "Assinatura ou token ausentes"
// @Failure 404 {object} Response "Link inválido"
// @Failure 409 {object} Response "Contrato já assinado"
// @Failure 410 {object} Response "Prazo de assinatura expirado"
// @Router /v1/public/contracts/sign [post]
func (h *ContractHandler) Sign(c *gin.Context) {
	var req signContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	contract, err := h.contracts.Sign(c.Request.Context(), service.SignInput{
		Token:          req.Token,
		SignatureImage: req.SignatureImage,
		Meta:           accessMeta(c),
	})
	if err != nil {
		h.respondContractError(c, err, MsgContractSignFailed)
		return
	}

	SuccessWithMsg(c, "Contrato assinado com sucesso", contract)
}

// respondContractError converte erros de negócio em respostas HTTP
func (h *ContractHandler) respondContractError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTokenMissing), errors.Is(err, service.ErrSignatureMissing):
		BadRequest(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrContractNotFound):
		NotFound(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrContractExpired):
		Gone(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrContractNotPending):
		Conflict(c, GetErrorMessage(err))
	default:
		h.log.Error("contract operation failed", zap.Error(err))
		InternalError(c, fallback)
	}
}

type createContractRequest struct {
	Subject              string  `json:"subject"`
	BodyHTML             string  `json:"bodyHtml"`
	DocumentType         string  `json:"documentType"`
	SignatoryName        string  `json:"signatoryName" binding:"required"`
	SignatoryTaxID       string  `json:"signatoryTaxId"`
	SignatureDays        int     `json:"signatureDays"`
	IssuerSignatureImage *string `json:"issuerSignatureImage"`
}

type createContractResponse struct {
	Contract    *domain.Contract `json:"contract"`
	AccessToken string           `json:"accessToken"`
	SigningURL  string           `json:"signingUrl"`
}

// Create godoc
// @Summary Emitir contrato
// @Description Emite um contrato e devolve o link de assinatura; o token não é reexposto depois
// @Tags Contratos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createContractRequest true "Dados do contrato"
// @Success 201 {object} Response{data=createContractResponse}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /v1/admin/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), service.CreateContractInput{
		Subject:              req.Subject,
		BodyHTML:             req.BodyHTML,
		DocumentType:         req.DocumentType,
		SignatoryName:        req.SignatoryName,
		SignatoryTaxID:       req.SignatoryTaxID,
		SignatureDays:        req.SignatureDays,
		IssuerSignatureImage: req.IssuerSignatureImage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaxID) {
			BadRequest(c, "CPF ou CNPJ inválido")
			return
		}
		h.log.Error("failed to create contract", zap.Error(err))
		InternalError(c, MsgContractCreateFailed)
		return
	}

	Created(c, createContractResponse{
		Contract:    contract,
		AccessToken: contract.AccessToken,
		SigningURL:  fmt.Sprintf("%s/assinar/%s", h.publicBaseURL, contract.AccessToken),
	})
}

type contractListResponse struct {
	Items []domain.Contract `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
}

// List godoc
// @Summary Listar contratos
// @Description Lista os contratos emitidos, com paginação e filtro por status
// @Tags Contratos
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página (padrão 1)"
// @Param pageSize query int false "Itens por página (padrão 20)"
// @Param status query string false "Filtro por status: pending, signed ou expired"
// @Success 200 {object} Response{data=contractListResponse}
// @Failure 500 {object} Response
// @Router /v1/admin/contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	var status *domain.SignatureStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.SignatureStatus(raw)
		switch s {
		case domain.SignaturePending, domain.SignatureSigned, domain.SignatureExpired:
			status = &s
		default:
			BadRequest(c, "Status de contrato inválido")
			return
		}
	}

	contracts, total, err := h.contracts.List(c.Request.Context(), page, pageSize, status)
	if err != nil {
		h.log.Error("failed to list contracts", zap.Error(err))
		InternalError(c, MsgContractListFailed)
		return
	}

	Success(c, contractListResponse{
		Items: contracts,
		Total: total,
		Page:  page,
	})
}

// Get godoc
// @Summary Consultar contrato
// @Description Consulta um contrato pelo identificador
// @Tags Contratos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do contrato"
// @Success 200 {object} Response{data=domain.Contract}
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/admin/contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.contracts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			NotFound(c, MsgContractNotFound)
			return
		}
		h.log.Error("failed to get contract", zap.Error(err))
		InternalError(c, MsgContractGetFailed)
		return
	}

	Success(c, contract)
}

// Audit godoc
// @Summary Trilha de auditoria do contrato
// @Description Lista os eventos registrados para um contrato, do mais recente ao mais antigo
// @Tags Contratos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do contrato"
// @Param limit query int false "Quantidade máxima de eventos (padrão 100)"
// @Success 200 {object} Response{data=object{items=[]domain.AuditLogEntry,count=int}}
// @Failure 500 {object} Response
// @Router /v1/admin/contracts/{id}/audit [get]
func (h *ContractHandler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.contracts.ListAuditEntries(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.log.Error("failed to list audit entries", zap.Error(err))
		InternalError(c, MsgAuditListFailed)
		return
	}

	Success(c, gin.H{
		"items": entries,
		"count": len(entries),
	})
}
