package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
)

// MailHandler trata as rotas de envio e verificação de email
type MailHandler struct {
	mailer   *service.MailerService
	verifier *service.VerifierService
	log      *zap.Logger
}

// NewMailHandler cria o handler de email
func NewMailHandler(mailer *service.MailerService, verifier *service.VerifierService, log *zap.Logger) *MailHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailHandler{
		mailer:   mailer,
		verifier: verifier,
		log:      log,
	}
}

type sendMailRequest struct {
	To      []string `json:"to" binding:"required"`
	Cc      []string `json:"cc"`
	Bcc     []string `json:"bcc"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    string   `json:"html"`
	From    string   `json:"from"`
}

// Send godoc
// @Summary Enviar email transacional
// @Description Envia um email usando a conta de envio padrão, em tentativa única
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body sendMailRequest true "Mensagem"
// @Success 200 {object} Response
// @Failure 400 {object} Response "Sem destinatários ou sem conta padrão"
// @Failure 500 {object} Response "Falha na entrega ao servidor SMTP"
// @Router /v1/mail/send [post]
func (h *MailHandler) Send(c *gin.Context) {
	var req sendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.mailer.Send(c.Request.Context(), domain.MailMessage{
		To:      req.To,
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
		From:    req.From,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoRecipients):
			BadRequest(c, "Informe ao menos um destinatário")
		case errors.Is(err, service.ErrNoDefaultAccount):
			BadRequest(c, GetErrorMessage(service.ErrNoDefaultAccount))
		case errors.Is(err, service.ErrSendFailed):
			// Entrega única, sem nova tentativa; o chamador decide reenviar
			InternalError(c, MsgMailSendFailed)
		default:
			h.log.Error("failed to send mail", zap.Error(err))
			InternalError(c, MsgMailSendFailed)
		}
		return
	}

	SuccessWithMsg(c, "Email enviado com sucesso", nil)
}

// VerifySMTP godoc
// @Summary Verificar credenciais SMTP
// @Description Testa host, porta e credenciais SMTP sem enviar mensagem alguma.
// @Description Falhas de verificação respondem 200 com um resultado
// @Description etiquetado; apenas campos obrigatórios ausentes geram 400.
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.VerifyInput true "Credenciais a testar"
// @Success 200 {object} Response{data=service.VerifyResult}
// @Failure 400 {object} Response "Requisição malformada ou campos ausentes"
// @Router /v1/mail/verify-smtp [post]
func (h *MailHandler) VerifySMTP(c *gin.Context) {
	var req service.VerifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	result := h.verifier.Verify(c.Request.Context(), req)
	if result.Category == service.VerifyCategoryMissingFields {
		BadRequest(c, result.Message)
		return
	}
	Success(c, result)
}
