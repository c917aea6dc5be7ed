package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	ListRequests        *prometheus.CounterVec
	ListRequestDuration prometheus.Histogram
	RecordRequests      *prometheus.CounterVec
	PlaybacksActive     prometheus.Gauge
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultStale = "stale"
)

// Init creates and registers the collectors. It is safe to call more than
// once.
func Init() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		ListRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callview_list_requests_total",
				Help: "Call list requests by result",
			},
			[]string{"result"},
		)
		ListRequestDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "callview_list_request_duration_seconds",
				Help:    "Call list request latency",
				Buckets: prometheus.DefBuckets,
			},
		)
		RecordRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callview_record_requests_total",
				Help: "Recording downloads by result",
			},
			[]string{"result"},
		)
		PlaybacksActive = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "callview_playbacks_active",
				Help: "Recordings currently playing",
			},
		)

		registry.MustRegister(ListRequests, ListRequestDuration, RecordRequests, PlaybacksActive)
	})
	return registry
}

// ObserveList records one finished list request.
func ObserveList(result string, elapsed time.Duration) {
	Init()
	ListRequests.WithLabelValues(result).Inc()
	if result != ResultStale {
		ListRequestDuration.Observe(elapsed.Seconds())
	}
}

// ObserveRecord records one finished recording download.
func ObserveRecord(result string) {
	Init()
	RecordRequests.WithLabelValues(result).Inc()
}

// PlaybackStarted and PlaybackStopped track the active playback gauge.
func PlaybackStarted() {
	Init()
	PlaybacksActive.Inc()
}

func PlaybackStopped() {
	Init()
	PlaybacksActive.Dec()
}

// Serve exposes the registry on addr in the background. An empty addr
// disables the listener. The returned server may be nil.
func Serve(addr string, logger *logrus.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	reg := Init()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("Metrics listener stopped")
		}
	}()
	return srv
}
