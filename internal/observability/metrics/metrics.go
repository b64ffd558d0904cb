package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                           sync.Once
	metricsRouter                  *chi.Mux
	clientRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram        *prometheus.HistogramVec
	decisionCounter                *prometheus.CounterVec
	activeModeGauge                *prometheus.GaugeVec
	switchDurationHistogram        *prometheus.HistogramVec
	workerSwitchFailureCounter     prometheus.Counter
	donationFailCountGauge         prometheus.Gauge
	fleetHashrateGauge             *prometheus.GaugeVec
	staleTelemetryCounter          prometheus.Counter
	dbLatency                      *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// client requests are the ones sending to other service
	clientRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"baseurl", "method", "path", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	decisionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algo_decision_total",
			Help: "Number of control-cycle decisions per resulting mode",
		},
		[]string{"mode"},
	)

	activeModeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_mode",
			Help: "1 for the mode the fleet currently mines in, 0 for the others",
		},
		[]string{"mode"},
	)

	switchDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "switch_duration_seconds",
			Help:    "Histogram of fleet switch durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"strategy", "status"},
	)

	workerSwitchFailureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_switch_failure_total",
			Help: "Number of individual workers that could not be reconfigured during a switch",
		},
	)

	donationFailCountGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "donation_fail_count",
			Help: "Last donation endpoint failure counter reported or accumulated",
		},
	)

	fleetHashrateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleet_hashrate_hs",
			Help: "Aggregated fleet hashrate in H/s per averaging window",
		},
		[]string{"window"},
	)

	staleTelemetryCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_telemetry_total",
			Help: "Number of control ticks that decided on telemetry older than two collection periods",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		clientRequestDurationHistogram,
		pollerDurationHistogram,
		decisionCounter,
		activeModeGauge,
		switchDurationHistogram,
		workerSwitchFailureCounter,
		donationFailCountGauge,
		fleetHashrateGauge,
		staleTelemetryCounter,
		dbLatency,
	)
}

func RecordDecision(mode string) {
	decisionCounter.WithLabelValues(mode).Inc()
}

// RecordActiveMode sets the active-mode gauge, zeroing every other mode.
func RecordActiveMode(active string, all []string) {
	for _, mode := range all {
		v := 0.0
		if mode == active {
			v = 1.0
		}
		activeModeGauge.WithLabelValues(mode).Set(v)
	}
}

func RecordSwitchDuration(d time.Duration, strategy string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	switchDurationHistogram.WithLabelValues(strategy, status.String()).Observe(d.Seconds())
}

func RecordWorkerSwitchFailures(count int) {
	workerSwitchFailureCounter.Add(float64(count))
}

func RecordDonationFailCount(count int) {
	donationFailCountGauge.Set(float64(count))
}

func RecordFleetHashrate(window string, hashrate float64) {
	fleetHashrateGauge.WithLabelValues(window).Set(hashrate)
}

func RecordStaleTelemetry() {
	staleTelemetryCounter.Inc()
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

// RecordClientRequestDuration records one outgoing HTTP request made by a
// client package.
func RecordClientRequestDuration(baseUrl, method, path string, statusCode int, d time.Duration) {
	clientRequestDurationHistogram.
		WithLabelValues(baseUrl, method, path, fmt.Sprintf("%d", statusCode)).
		Observe(d.Seconds())
}
