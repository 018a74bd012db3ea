package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/service"
)

// AccountHandler trata as rotas de contas de envio SMTP
type AccountHandler struct {
	accounts *service.MailAccountService
	log      *zap.Logger
}

// NewAccountHandler cria o handler de contas de envio
func NewAccountHandler(accounts *service.MailAccountService, log *zap.Logger) *AccountHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountHandler{
		accounts: accounts,
		log:      log,
	}
}

// Create godoc
// @Summary Cadastrar conta de envio
// @Description Cadastra uma conta SMTP; a primeira conta vira padrão automaticamente
// @Tags Contas de envio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.MailAccountInput true "Dados da conta"
// @Success 201 {object} Response{data=domain.MailAccount}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /v1/admin/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req service.MailAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAccountInvalid) {
			BadRequest(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to create mail account", zap.Error(err))
		InternalError(c, MsgAccountCreateFailed)
		return
	}

	Created(c, account)
}

// List godoc
// @Summary Listar contas de envio
// @Tags Contas de envio
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=object{items=[]domain.MailAccount,count=int}}
// @Failure 500 {object} Response
// @Router /v1/admin/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list mail accounts", zap.Error(err))
		InternalError(c, MsgAccountListFailed)
		return
	}

	Success(c, gin.H{
		"items": accounts,
		"count": len(accounts),
	})
}

// Get godoc
// @Summary Consultar conta de envio
// @Tags Contas de envio
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Success 200 {object} Response{data=domain.MailAccount}
// @Failure 404 {object} Response
// @Router /v1/admin/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			NotFound(c, MsgAccountNotFound)
			return
		}
		h.log.Error("failed to get mail account", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	Success(c, account)
}

// Update godoc
// @Summary Editar conta de envio
// @Description Edita os dados da conta; senha em branco mantém a atual
// @Tags Contas de envio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Param request body service.MailAccountInput true "Dados da conta"
// @Success 200 {object} Response{data=domain.MailAccount}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /v1/admin/accounts/{id} [patch]
func (h *AccountHandler) Update(c *gin.Context) {
	var req service.MailAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountInvalid):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrAccountNotFound):
			NotFound(c, MsgAccountNotFound)
		default:
			h.log.Error("failed to update mail account", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	Success(c, account)
}

// SetDefault godoc
// @Summary Definir conta padrão
// @Description Define a conta padrão de envio; as demais deixam de ser padrão
// @Tags Contas de envio
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /v1/admin/accounts/{id}/set-default [post]
func (h *AccountHandler) SetDefault(c *gin.Context) {
	if err := h.accounts.SetDefault(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			NotFound(c, MsgAccountNotFound)
			return
		}
		h.log.Error("failed to set default mail account", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	SuccessWithMsg(c, "Conta padrão atualizada", nil)
}

// Delete godoc
// @Summary Remover conta de envio
// @Tags Contas de envio
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Success 204
// @Failure 404 {object} Response
// @Router /v1/admin/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			NotFound(c, MsgAccountNotFound)
			return
		}
		h.log.Error("failed to delete mail account", zap.Error(err))
		InternalError(c, MsgAccountDeleteFailed)
		return
	}

	NoContent(c)
}
