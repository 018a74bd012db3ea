package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// Limite padrão do corpo da requisição
	DefaultBodyLimit = 10 * 1024 * 1024 // 10MB

	// Limites por tipo de requisição
	SmallBodyLimit     = 1 * 1024 * 1024 // 1MB - requisições comuns de API
	SignatureBodyLimit = 5 * 1024 * 1024 // 5MB - assinatura manuscrita em data URL PNG
)

// BodySizeLimit limita o tamanho do corpo da requisição
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Verifica o cabeçalho Content-Length
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request body too large",
				"message": fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes),
				"limit":   maxBytes,
				"size":    c.Request.ContentLength,
			})
			c.Abort()
			return
		}

		// Limita a leitura do corpo
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		// Informa ao cliente o tamanho máximo permitido
		c.Header("X-Max-Body-Size", strconv.FormatInt(maxBytes, 10))

		c.Next()

		// Verifica se o corpo excedeu o limite durante a leitura
		if c.Errors != nil {
			for _, err := range c.Errors {
				if err.Err != nil && err.Err.Error() == "http: request body too large" {
					c.JSON(http.StatusRequestEntityTooLarge, gin.H{
						"error":   "Request body too large",
						"message": fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes),
						"limit":   maxBytes,
					})
					return
				}
			}
		}
	}
}

// DynamicBodySizeLimit define limites de corpo por rota
func DynamicBodySizeLimit(limits map[string]int64, defaultLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		limit, exists := limits[path]
		if !exists {
			limit = defaultLimit
		}

		if c.Request.ContentLength > limit {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request body too large",
				"message": fmt.Sprintf("Request body exceeds maximum size of %d bytes for this endpoint", limit),
				"limit":   limit,
				"size":    c.Request.ContentLength,
				"path":    path,
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Header("X-Max-Body-Size", strconv.FormatInt(limit, 10))

		c.Next()
	}
}
