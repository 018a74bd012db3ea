package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

type stubTransport struct {
	err error
}

func (t *stubTransport) Deliver(ctx context.Context, account *domain.MailAccount, from string, recipients []string, message []byte) error {
	return t.err
}

func newVerifyRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMailHandler(nil, service.NewVerifierService(nil), nil)
	router := gin.New()
	router.POST("/v1/mail/verify-smtp", handler.VerifySMTP)
	return router
}

func newSendRouter(store *memory.Store, transport service.Transport) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mailer := service.NewMailerService(store, transport, nil)
	handler := NewMailHandler(mailer, nil, nil)
	router := gin.New()
	router.POST("/v1/mail/send", handler.Send)
	return router
}

func postSendMail(t *testing.T, router *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"to":["cliente@example.com"],"subject":"Contrato","body":"Segue o link de assinatura."}`
	req := httptest.NewRequest(http.MethodPost, "/v1/mail/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendHandler(t *testing.T) {
	defaultAccount := &domain.MailAccount{
		ID:        "acc-1",
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "contratos@example.com",
		Password:  "segredo",
		IsDefault: true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	t.Run("sem conta padrão responde 400", func(t *testing.T) {
		router := newSendRouter(memory.NewStore(), &stubTransport{})
		rec := postSendMail(t, router)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("falha de entrega responde 500", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.SaveMailAccount(defaultAccount))

		router := newSendRouter(store, &stubTransport{err: context.DeadlineExceeded})
		rec := postSendMail(t, router)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("entrega bem-sucedida responde 200", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.SaveMailAccount(defaultAccount))

		router := newSendRouter(store, &stubTransport{})
		rec := postSendMail(t, router)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVerifySMTPHandler(t *testing.T) {
	router := newVerifyRouter()

	t.Run("campos obrigatórios ausentes respondem 400", func(t *testing.T) {
		body := `{"smtp_host":"","smtp_user":"","smtp_password":""}`
		req := httptest.NewRequest(http.MethodPost, "/v1/mail/verify-smtp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, CodeBadRequest, resp.Code)
		assert.NotEmpty(t, resp.Msg)
	})

	t.Run("host presente mas usuário ausente responde 400", func(t *testing.T) {
		body := `{"smtp_host":"smtp.example.com","smtp_port":587,"smtp_password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/mail/verify-smtp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("JSON malformado responde 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/mail/verify-smtp", strings.NewReader("{nope"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
