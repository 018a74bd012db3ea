package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores de negócio incrementados pelos serviços.
var (
	// ContractsIssued contratos emitidos
	ContractsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_contracts_issued_total",
		Help: "Total de contratos emitidos",
	})

	// ContractsResolved resoluções públicas de contrato bem-sucedidas
	ContractsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_contracts_resolved_total",
		Help: "Total de resoluções de contrato por token",
	})

	// ContractsSigned contratos assinados
	ContractsSigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_contracts_signed_total",
		Help: "Total de contratos assinados",
	})

	// ContractsExpired contratos expirados pela varredura
	ContractsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_contracts_expired_total",
		Help: "Total de contratos expirados",
	})

	// MailSent emails transacionais entregues
	MailSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_mail_sent_total",
		Help: "Total de emails transacionais enviados",
	})

	// MailSendFailures falhas de entrega SMTP
	MailSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_mail_send_failures_total",
		Help: "Total de falhas de envio de email",
	})

	// SMTPVerifyFailures verificações SMTP com falha
	SMTPVerifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_smtp_verify_failures_total",
		Help: "Total de verificações SMTP com falha",
	})

	// AuditWriteFailures entradas de auditoria perdidas (fila cheia ou
	// falha de gravação)
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmarcas_audit_write_failures_total",
		Help: "Total de entradas de auditoria descartadas",
	})
)

// Metrics métricas de infraestrutura expostas em /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	SystemUptime        prometheus.Gauge
	DatabaseConnections prometheus.Gauge
	RedisConnections    prometheus.Gauge

	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	RateLimitHits   *prometheus.CounterVec
	RateLimitBlocks *prometheus.CounterVec

	WebsocketClients prometheus.Gauge
}

// NewMetrics cria as métricas de infraestrutura.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmarcas_http_requests_total",
				Help: "Total de requisições HTTP",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webmarcas_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP em segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webmarcas_http_request_size_bytes",
				Help:    "Tamanho das requisições HTTP em bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webmarcas_http_response_size_bytes",
				Help:    "Tamanho das respostas HTTP em bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),

		SystemUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webmarcas_system_uptime_seconds",
				Help: "Tempo de atividade do processo em segundos",
			},
		),

		DatabaseConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webmarcas_database_connections",
				Help: "Conexões abertas com o banco de dados",
			},
		),

		RedisConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webmarcas_redis_connections",
				Help: "Conexões abertas com o Redis",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmarcas_errors_total",
				Help: "Total de erros",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmarcas_panics_total",
				Help: "Total de pânicos recuperados",
			},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmarcas_rate_limit_hits_total",
				Help: "Total de requisições avaliadas pela limitação de taxa",
			},
			[]string{"type"},
		),

		RateLimitBlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmarcas_rate_limit_blocks_total",
				Help: "Total de requisições bloqueadas pela limitação de taxa",
			},
			[]string{"type"},
		),

		WebsocketClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webmarcas_websocket_clients",
				Help: "Clientes websocket conectados",
			},
		),
	}
}

// RecordHTTPRequest registra as métricas de uma requisição HTTP.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordError registra um erro por tipo e componente.
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic registra um pânico recuperado.
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimitHit registra uma requisição avaliada pela limitação de taxa.
func (m *Metrics) RecordRateLimitHit(limitType string) {
	m.RateLimitHits.WithLabelValues(limitType).Inc()
}

// RecordRateLimitBlock registra uma requisição bloqueada.
func (m *Metrics) RecordRateLimitBlock(limitType string) {
	m.RateLimitBlocks.WithLabelValues(limitType).Inc()
}

// UpdateSystemUptime atualiza o tempo de atividade.
func (m *Metrics) UpdateSystemUptime(uptime time.Duration) {
	m.SystemUptime.Set(uptime.Seconds())
}

// UpdateDatabaseConnections atualiza o número de conexões com o banco.
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// UpdateRedisConnections atualiza o número de conexões com o Redis.
func (m *Metrics) UpdateRedisConnections(count int) {
	m.RedisConnections.Set(float64(count))
}

// HTTPHandler devolve o handler Prometheus para /metrics.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
