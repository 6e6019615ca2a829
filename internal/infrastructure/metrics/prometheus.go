package metrics

import (
	"net/http"

	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics contadores del libro de existencias en un registry propio.
type Metrics struct {
	registry  *prometheus.Registry
	handler   http.Handler
	recorded  *prometheus.CounterVec
	voided    prometheus.Counter
	rejected  *prometheus.CounterVec
	retries   prometheus.Counter
	collision prometheus.Counter
}

// New registra los contadores más los collectors de proceso y runtime.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventario",
			Name:      "movements_recorded_total",
			Help:      "Movimientos confirmados por dirección.",
		}, []string{"direction"}),
		voided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventario",
			Name:      "movements_voided_total",
			Help:      "Movimientos anulados.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventario",
			Name:      "movements_rejected_total",
			Help:      "Movimientos rechazados por motivo.",
		}, []string{"reason"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventario",
			Name:      "tx_conflict_retries_total",
			Help:      "Reintentos por conflicto de concurrencia.",
		}),
		collision: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventario",
			Name:      "sequence_collisions_total",
			Help:      "Números de documento que ya existían al reservar.",
		}),
	}
	registry.MustRegister(
		m.recorded, m.voided, m.rejected, m.retries, m.collision,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registry para registrar collectors adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) MovementRecorded(direction string) { m.recorded.WithLabelValues(direction).Inc() }
func (m *Metrics) MovementVoided()                   { m.voided.Inc() }
func (m *Metrics) Rejected(reason string)            { m.rejected.WithLabelValues(reason).Inc() }
func (m *Metrics) ConflictRetried()                  { m.retries.Inc() }
func (m *Metrics) SequenceCollision()                { m.collision.Inc() }
