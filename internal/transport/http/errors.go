package httptransport

import (
	"github.com/Davilys/webmarcas1-sub006/internal/auth"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
)

// Mapa de mensagens (erro de negócio -> mensagem em português)
var errorMessages = map[error]string{
	// Contratos
	service.ErrTokenMissing:       "Informe o código de acesso do contrato",
	service.ErrContractNotFound:   "Link inválido ou contrato não encontrado",
	service.ErrContractExpired:    "O prazo de assinatura deste contrato expirou",
	service.ErrContractNotPending: "Este contrato não está mais pendente de assinatura",
	service.ErrSignatureMissing:   "Desenhe a assinatura antes de confirmar",

	// Envio de email
	service.ErrNoDefaultAccount: "Nenhuma conta de envio padrão configurada",
	service.ErrSendFailed:       "Falha ao enviar o email",

	// Contas de envio
	service.ErrAccountNotFound: "Conta de envio não encontrada",
	service.ErrAccountInvalid:  "Dados da conta de envio inválidos",

	// Administração
	service.ErrEmailInUse:   "Este email já está cadastrado",
	service.ErrWeakPassword: "A senha deve ter pelo menos 8 caracteres",
	service.ErrInvalidRole:  "Papel de usuário inválido",

	// Autenticação
	auth.ErrInvalidCredentials: "Usuário ou senha incorretos",
	auth.ErrUserInactive:       "Conta desativada",
	auth.ErrUserNotFound:       "Usuário não encontrado",
}

// GetErrorMessage devolve a mensagem em português de um erro de negócio
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// Mensagens genéricas
const (
	// Requisição
	MsgInvalidRequest   = "Parâmetros da requisição inválidos"
	MsgInvalidJSON      = "Formato JSON inválido"
	MsgRequestBodyEmpty = "O corpo da requisição não pode ser vazio"

	// Autenticação
	MsgAuthRequired       = "É necessário estar autenticado"
	MsgInvalidCredentials = "Usuário ou senha incorretos"
	MsgTokenExpired       = "Sessão expirada, faça login novamente"
	MsgTokenInvalid       = "Token de acesso inválido"
	MsgPermissionDenied   = "Permissão insuficiente"

	// Contratos
	MsgContractCreateFailed = "Falha ao emitir o contrato"
	MsgContractNotFound     = "Link inválido ou contrato não encontrado"
	MsgContractListFailed   = "Falha ao listar os contratos"
	MsgContractGetFailed    = "Falha ao consultar o contrato"
	MsgContractSignFailed   = "Falha ao registrar a assinatura"
	MsgAuditListFailed      = "Falha ao consultar a trilha de auditoria"

	// Email
	MsgMailSendFailed   = "Falha ao enviar o email, tente novamente em instantes"
	MsgMailQueueUnavail = "Serviço de envio indisponível no momento"

	// Contas de envio
	MsgAccountCreateFailed = "Falha ao cadastrar a conta de envio"
	MsgAccountListFailed   = "Falha ao listar as contas de envio"
	MsgAccountDeleteFailed = "Falha ao remover a conta de envio"
	MsgAccountNotFound     = "Conta de envio não encontrada"

	// Usuários
	MsgUserCreateFailed = "Falha ao cadastrar o usuário"
	MsgUserListFailed   = "Falha ao listar os usuários"
	MsgUserNotFound     = "Usuário não encontrado"
	MsgUserGetFailed    = "Falha ao consultar o usuário"
	MsgUserUpdateFailed = "Falha ao atualizar o usuário"

	// Servidor
	MsgInternalError = "Erro interno do servidor, tente novamente mais tarde"
)
