// Package metrics expone métricas Prometheus del servicio: requests HTTP
// y contadores del dominio de rotación. Vive en un paquete propio para
// evitar ciclos de import entre servicios y HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Rotation metrics
	rotationRunsTotal       *prometheus.CounterVec
	rotationSkippedTotal    *prometheus.CounterVec
	rotationConflictsTotal  prometheus.Counter
	rotationLockWaitSeconds prometheus.Histogram
)

// Register inicializa las métricas y devuelve el handler para /metrics.
// Si pool no es nil, registra además un collector de stats de pgxpool.
func Register(registry prometheus.Registerer, pool func() *pgxpool.Pool) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		rotationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rotation_runs_total",
			Help: "Rondas generadas por resultado",
		}, []string{"result"}) // result: committed|empty_pool|conflict|error

		rotationSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rotation_skipped_slots_total",
			Help: "Slots de rol salteados por pool agotado",
		}, []string{"role"})

		rotationConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_ledger_conflicts_total",
			Help: "Conflictos de numeración de ronda detectados al persistir",
		})

		rotationLockWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rotation_lock_wait_seconds",
			Help:    "Espera para adquirir el lock de scope",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			rotationRunsTotal, rotationSkippedTotal,
			rotationConflictsTotal, rotationLockWaitSeconds,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if pool != nil {
		if err := registerCollector(registry, newPoolCollector(pool)); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// WithHTTP instrumenta requests con contadores, latencia e inflight.
func WithHTTP(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RecordRun registra el resultado de un intento de generación de ronda.
func RecordRun(result string) {
	if rotationRunsTotal != nil {
		rotationRunsTotal.WithLabelValues(result).Inc()
	}
}

// RecordSkippedSlot registra un slot de rol salteado.
func RecordSkippedSlot(role string) {
	if rotationSkippedTotal != nil {
		rotationSkippedTotal.WithLabelValues(role).Inc()
	}
}

// RecordLedgerConflict registra un conflicto de numeración.
func RecordLedgerConflict() {
	if rotationConflictsTotal != nil {
		rotationConflictsTotal.Inc()
	}
}

// RecordLockWait registra cuánto esperó un request el lock de su scope.
func RecordLockWait(d time.Duration) {
	if rotationLockWaitSeconds != nil {
		rotationLockWaitSeconds.Observe(d.Seconds())
	}
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// poolCollector expone gauges del pool global de Postgres.
type poolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(pool func() *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	pool := c.pool()
	if pool == nil {
		return
	}
	if stat := pool.Stat(); stat != nil {
		ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
		ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
	}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	// UUIDs y números son IDs de recursos
	if len(seg) == 36 && strings.Count(seg, "-") == 4 {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
