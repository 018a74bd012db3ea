package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response estrutura unificada das respostas
type Response struct {
	Code int         `json:"code"`           // código de status de negócio
	Msg  string      `json:"msg"`            // mensagem em português
	Data interface{} `json:"data,omitempty"` // carga de dados
}

// Códigos de status de negócio
const (
	// Sucesso 2xx
	CodeSuccess   = 200 // sucesso
	CodeCreated   = 201 // criado com sucesso
	CodeNoContent = 204 // sem conteúdo (remoção concluída)

	// Erros do cliente 4xx
	CodeBadRequest          = 400 // parâmetros da requisição inválidos
	CodeUnauthorized        = 401 // não autenticado
	CodeForbidden           = 403 // sem permissão
	CodeNotFound            = 404 // recurso inexistente
	CodeConflict            = 409 // conflito de recurso
	CodeGone                = 410 // recurso expirado
	CodeUnprocessableEntity = 422 // entidade não processável

	// Erros do servidor 5xx
	CodeInternalError = 500 // erro interno do servidor
)

// Success resposta de sucesso (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeSuccess,
		Msg:  "sucesso",
		Data: data,
	})
}

// SuccessWithMsg resposta de sucesso com mensagem personalizada
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	})
}

// Created resposta de criação (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code: CodeCreated,
		Msg:  "criado com sucesso",
		Data: data,
	})
}

// NoContent resposta sem conteúdo (204), usada após remoções
func NoContent(c *gin.Context) {
	c.JSON(http.StatusNoContent, Response{
		Code: CodeNoContent,
		Msg:  "operação concluída",
		Data: nil,
	})
}

// BadRequest parâmetros inválidos (400)
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Code: CodeBadRequest,
		Msg:  msg,
		Data: nil,
	})
}

// Unauthorized não autenticado (401)
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{
		Code: CodeUnauthorized,
		Msg:  msg,
		Data: nil,
	})
}

// Forbidden sem permissão (403)
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{
		Code: CodeForbidden,
		Msg:  msg,
		Data: nil,
	})
}

// NotFound recurso inexistente (404)
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{
		Code: CodeNotFound,
		Msg:  msg,
		Data: nil,
	})
}

// Conflict conflito de recurso (409)
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, Response{
		Code: CodeConflict,
		Msg:  msg,
		Data: nil,
	})
}

// Gone recurso expirado (410)
func Gone(c *gin.Context, msg string) {
	c.JSON(http.StatusGone, Response{
		Code: CodeGone,
		Msg:  msg,
		Data: nil,
	})
}

// UnprocessableEntity entidade não processável (422)
func UnprocessableEntity(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Code: CodeUnprocessableEntity,
		Msg:  msg,
		Data: nil,
	})
}

// InternalError erro interno (500)
func InternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code: CodeInternalError,
		Msg:  msg,
		Data: nil,
	})
}

// Error resposta de erro genérica conforme o código HTTP
func Error(c *gin.Context, httpCode int, msg string) {
	c.JSON(httpCode, Response{
		Code: httpCode,
		Msg:  msg,
		Data: nil,
	})
}
