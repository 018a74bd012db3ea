package httptransport

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// AdminHandler trata as rotas de gestão de usuários do painel
type AdminHandler struct {
	admin *service.AdminService
	log   *zap.Logger
}

// NewAdminHandler cria o handler administrativo
func NewAdminHandler(admin *service.AdminService, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		admin: admin,
		log:   log,
	}
}

// CreateUser godoc
// @Summary Cadastrar usuário do painel
// @Description Cadastra um usuário; o papel padrão é "user"
// @Tags Administração
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateUserInput true "Dados do usuário"
// @Success 201 {object} Response{data=domain.User}
// @Failure 400 {object} Response
// @Failure 409 {object} Response "Email já cadastrado"
// @Router /v1/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.admin.CreateUser(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			BadRequest(c, "Email inválido")
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidRole):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, service.ErrEmailInUse):
			Conflict(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to create user", zap.Error(err))
			InternalError(c, MsgUserCreateFailed)
		}
		return
	}

	Created(c, user)
}

type userListResponse struct {
	Items []domain.User `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
}

// ListUsers godoc
// @Summary Listar usuários do painel
// @Tags Administração
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página (padrão 1)"
// @Param pageSize query int false "Itens por página (padrão 20)"
// @Param search query string false "Busca por email ou nome de usuário"
// @Success 200 {object} Response{data=userListResponse}
// @Failure 500 {object} Response
// @Router /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	search := c.Query("search")

	users, total, err := h.admin.ListUsers(c.Request.Context(), page, pageSize, search)
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		InternalError(c, MsgUserListFailed)
		return
	}

	Success(c, userListResponse{
		Items: users,
		Total: total,
		Page:  page,
	})
}

type setUserActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// SetUserActive godoc
// @Summary Ativar ou desativar usuário
// @Tags Administração
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param request body setUserActiveRequest true "Novo estado"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /v1/admin/users/{id}/active [patch]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	var req setUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.admin.SetUserActive(c.Request.Context(), c.Param("id"), req.IsActive); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			NotFound(c, MsgUserNotFound)
			return
		}
		h.log.Error("failed to update user", zap.Error(err))
		InternalError(c, MsgUserUpdateFailed)
		return
	}

	SuccessWithMsg(c, "Usuário atualizado", nil)
}
