// Package metrics fornece a recolha e exposição de métricas Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector é a interface de recolha de métricas.
// Utilizada pelos handlers e pela camada de serviço.
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(route string, duration time.Duration)
	RecordFormularioCreated()
	RecordFormularioDeleted()
	RecordFotoUploaded()
	RecordLoginSuccess(provider string)
	RecordLoginFailure(provider string)
}

// Collector é a implementação que recolhe métricas Prometheus.
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	formulariosCreate prometheus.Counter
	formulariosDelete prometheus.Counter
	fotosUploaded     prometheus.Counter
	loginSuccess      *prometheus.CounterVec
	loginFailure      *prometheus.CounterVec
}

// NewCollector cria um Collector e regista as métricas no registry indicado.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulario_http_status_total",
			Help: "Número de respostas por código de estado HTTP",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formulario_request_latency_seconds",
			Help:    "Latência das requisições HTTP (segundos)",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		formulariosCreate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formulario_created_total",
			Help: "Número total de formulários criados",
		}),
		formulariosDelete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formulario_deleted_total",
			Help: "Número total de formulários apagados",
		}),
		fotosUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formulario_fotos_uploaded_total",
			Help: "Número total de fotos de perfil enviadas",
		}),
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulario_login_success_total",
			Help: "Número de autenticações bem-sucedidas por provedor",
		}, []string{"provider"}),
		loginFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulario_login_failure_total",
			Help: "Número de autenticações falhadas por provedor",
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.formulariosCreate,
		c.formulariosDelete,
		c.fotosUploaded,
		c.loginSuccess,
		c.loginFailure,
	)

	return c
}

// RecordHTTPStatus regista o código de estado de uma resposta.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency regista a latência de uma requisição.
func (c *Collector) RecordRequestLatency(route string, duration time.Duration) {
	c.requestLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordFormularioCreated regista a criação de um formulário.
func (c *Collector) RecordFormularioCreated() {
	c.formulariosCreate.Inc()
}

// RecordFormularioDeleted regista a remoção de um formulário.
func (c *Collector) RecordFormularioDeleted() {
	c.formulariosDelete.Inc()
}

// RecordFotoUploaded regista o envio de uma foto de perfil.
func (c *Collector) RecordFotoUploaded() {
	c.fotosUploaded.Inc()
}

// RecordLoginSuccess regista uma autenticação bem-sucedida.
func (c *Collector) RecordLoginSuccess(provider string) {
	c.loginSuccess.WithLabelValues(provider).Inc()
}

// RecordLoginFailure regista uma autenticação falhada.
func (c *Collector) RecordLoginFailure(provider string) {
	c.loginFailure.WithLabelValues(provider).Inc()
}

// Handler devolve o handler HTTP para scrape do Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute devolve um handler HTTP que serve o endpoint /metrics.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
