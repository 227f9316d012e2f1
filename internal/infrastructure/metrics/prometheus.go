package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

var _ tracking.Observer = (*TrackingMetrics)(nil)

// TrackingMetrics expone contadores de movimientos y la espera por bloqueos.
type TrackingMetrics struct {
	moves    *prometheus.CounterVec
	noops    *prometheus.CounterVec
	failures *prometheus.CounterVec
	lockWait *prometheus.HistogramVec
}

// NewTrackingMetrics registra los colectores en reg.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	m := &TrackingMetrics{
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracking",
			Name:      "moves_total",
			Help:      "Movimientos confirmados por tipo de ítem y tipo de movimiento.",
		}, []string{"kind", "type"}),
		noops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracking",
			Name:      "move_noops_total",
			Help:      "Movimientos al destino actual que no generaron registro.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracking",
			Name:      "move_failures_total",
			Help:      "Operaciones rechazadas o fallidas por causa.",
		}, []string{"kind", "reason"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tracking",
			Name:      "lock_wait_seconds",
			Help:      "Espera hasta obtener el bloqueo del ítem.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"kind"}),
	}
	reg.MustRegister(m.moves, m.noops, m.failures, m.lockWait)
	return m
}

// NewRegistry crea un registro con los colectores de proceso y runtime de Go.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *TrackingMetrics) MoveCommitted(kind entity.ItemKind, movementType entity.MovementType) {
	m.moves.WithLabelValues(string(kind), string(movementType)).Inc()
}

func (m *TrackingMetrics) MoveNoOp(kind entity.ItemKind) {
	m.noops.WithLabelValues(string(kind)).Inc()
}

func (m *TrackingMetrics) MoveFailed(kind entity.ItemKind, reason string) {
	m.failures.WithLabelValues(string(kind), reason).Inc()
}

func (m *TrackingMetrics) LockWait(kind entity.ItemKind, d time.Duration) {
	m.lockWait.WithLabelValues(string(kind)).Observe(d.Seconds())
}
