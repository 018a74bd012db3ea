package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// HealthChecker expõe as sondas de vida e prontidão do serviço.
type HealthChecker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
}

// NewHealthChecker cria o verificador de saúde sobre o armazenamento ativo.
func NewHealthChecker(store storage.Store, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}

	hc.addChecks()

	return hc
}

func (hc *HealthChecker) addChecks() {
	hc.health.AddLivenessCheck("storage", func() error {
		return hc.store.Health()
	})

	// A verificação de prontidão cobre o caminho de escrita dos contadores,
	// que no armazenamento híbrido passa pelo Redis.
	hc.health.AddReadinessCheck("rate-limit", func() error {
		_, err := hc.store.GetRateLimit("health_check")
		return err
	})
}

// Handler devolve o handler HTTP das sondas (/live e /ready).
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// LiveEndpoint sonda de vida, montável em qualquer rota.
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint sonda de prontidão, montável em qualquer rota.
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}

// CheckHealth executa as verificações e devolve um resumo por componente.
func (hc *HealthChecker) CheckHealth() map[string]string {
	results := make(map[string]string)

	if err := hc.store.Health(); err != nil {
		results["storage"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["storage"] = "OK"
	}

	if _, err := hc.store.GetRateLimit("health_check"); err != nil {
		results["rate-limit"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["rate-limit"] = "OK"
	}

	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}

// DatabaseHealthCheck verificação de banco com prazo curto, para sondas
// externas que recebem um *sql.DB direto.
func DatabaseHealthCheck(db *sql.DB) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return db.PingContext(ctx)
	}
}
