package httptransport

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/auth"
	jwtpkg "github.com/Davilys/webmarcas1-sub006/internal/auth/jwt"
)

// AuthHandler trata as requisições de autenticação do painel
type AuthHandler struct {
	authService *auth.Service   // serviço de autenticação
	jwtManager  *jwtpkg.Manager // gerenciador de tokens JWT
	log         *zap.Logger     // logger estruturado
}

// NewAuthHandler cria o handler de autenticação
//
// Parâmetros:
//   - authService: serviço de autenticação
//   - jwtManager: gerenciador de tokens JWT
//   - log: logger estruturado
//
// Retorno:
//   - *AuthHandler: instância do handler
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		log:         log,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Login godoc
// @Summary Login no painel
// @Description Autentica com email ou nome de usuário e senha; devolve os tokens
// @Tags Autenticação
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credenciais"
// @Success 200 {object} Response{data=authResponse} "Login realizado"
// @Failure 400 {object} Response "Parâmetros inválidos"
// @Failure 401 {object} Response "Usuário ou senha incorretos"
// @Failure 403 {object} Response "Conta desativada"
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(auth.LoginInput{
		Identifier: strings.TrimSpace(req.Username),
		Password:   req.Password,
	})

	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			Unauthorized(c, MsgInvalidCredentials)
		case auth.ErrUserInactive:
			Forbidden(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to login", zap.Error(err))
			InternalError(c, "Falha no login, tente novamente")
		}
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, "Falha ao gerar os tokens de acesso")
		return
	}

	h.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	Success(c, authResponse{
		User: userResponse{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		},
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Refresh godoc
// @Summary Renovar token de acesso
// @Description Emite um novo token de acesso a partir do token de renovação
// @Tags Autenticação
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Token de renovação"
// @Success 200 {object} Response{data=object{accessToken=string,expiresIn=int}}
// @Failure 400 {object} Response "Parâmetros inválidos"
// @Failure 401 {object} Response "Token de renovação inválido ou expirado"
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	accessToken, err := h.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		switch err {
		case jwtpkg.ErrInvalidToken:
			Unauthorized(c, MsgTokenInvalid)
		case jwtpkg.ErrExpiredToken:
			Unauthorized(c, MsgTokenExpired)
		default:
			h.log.Error("failed to refresh token", zap.Error(err))
			InternalError(c, "Falha ao renovar o token")
		}
		return
	}

	Success(c, gin.H{
		"accessToken": accessToken,
		"expiresIn":   int64(15 * 60), // 15 minutos
	})
}

// Me godoc
// @Summary Usuário autenticado
// @Description Devolve os dados do usuário da sessão atual
// @Tags Autenticação
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=userResponse}
// @Failure 401 {object} Response "Não autenticado"
// @Failure 404 {object} Response "Usuário não encontrado"
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	// O userID é preenchido pelo middleware de autenticação
	userID, exists := c.Get("userID")
	if !exists {
		Unauthorized(c, MsgAuthRequired)
		return
	}

	user, err := h.authService.GetUserByID(userID.(string))
	if err != nil {
		if err == auth.ErrUserNotFound {
			NotFound(c, MsgUserNotFound)
			return
		}
		h.log.Error("failed to get user", zap.Error(err))
		InternalError(c, MsgUserGetFailed)
		return
	}

	Success(c, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     string(user.Role),
		IsActive: user.IsActive,
	})
}

// ChangePassword godoc
// @Summary Alterar senha
// @Description Altera a senha do usuário autenticado
// @Tags Autenticação
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "Senha atual e nova senha"
// @Success 200 {object} Response
// @Failure 400 {object} Response "Nova senha fora dos critérios"
// @Failure 401 {object} Response "Senha atual incorreta"
// @Router /v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		Unauthorized(c, MsgAuthRequired)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.authService.ChangePassword(userID.(string), req.OldPassword, req.NewPassword)
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			Unauthorized(c, "Senha atual incorreta")
		case auth.ErrInvalidPassword:
			BadRequest(c, "A nova senha deve ter entre 8 e 72 caracteres")
		default:
			h.log.Error("failed to change password", zap.Error(err))
			InternalError(c, "Falha ao alterar a senha")
		}
		return
	}

	SuccessWithMsg(c, "Senha alterada com sucesso", nil)
}
