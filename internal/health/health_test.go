package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davilys/webmarcas1-sub006/internal/storage"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
)

// O verificador depende do agregado completo, contadores de limitação
// incluídos.
var _ storage.Store = (*memory.Store)(nil)

func TestCheckHealth(t *testing.T) {
	hc := NewHealthChecker(memory.NewStore(), nil)

	results := hc.CheckHealth()
	assert.Equal(t, "OK", results["storage"])
	assert.Equal(t, "OK", results["rate-limit"])
	assert.NotEmpty(t, results["timestamp"])
}

func TestProbeEndpoints(t *testing.T) {
	hc := NewHealthChecker(memory.NewStore(), nil)

	t.Run("sonda de vida responde 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		rec := httptest.NewRecorder()
		hc.LiveEndpoint(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("sonda de prontidão responde 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		hc.ReadyEndpoint(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
