package services

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	appContext "github.com/alphabatem/common/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// Sync metrics
var (
	syncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizsync_syncs_total",
			Help: "Completed sync operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	syncDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizsync_sync_duration_seconds",
			Help:    "Sync operation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	prefetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizsync_prefetch_failures_total",
			Help: "Media prefetch tasks that failed",
		},
	)
)

// Cache metrics
var (
	mediaCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizsync_media_cache_hits_total",
			Help: "Media cache hits by tier",
		},
		[]string{"tier"},
	)

	mediaCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizsync_media_cache_misses_total",
			Help: "Media requests that reached the network",
		},
	)

	mediaEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizsync_media_evictions_total",
			Help: "Entries evicted from the memory cache tier",
		},
	)
)

// MonitoringService exposes the default prometheus registry on its own
// port. METRICS_PORT=0 disables the listener; counters still accumulate
// for embedders that expose the registry themselves.
type MonitoringService struct {
	appContext.DefaultService

	port   int
	server *http.Server
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *appContext.Context) error {
	svc.port = DEFAULT_PROMETHEUS_PORT
	if port := os.Getenv("METRICS_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	if svc.port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	svc.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", svc.port),
		Handler: mux,
	}

	go func() {
		if err := svc.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics listener failed")
		}
	}()

	log.Printf("Prometheus metrics listening on :%d", svc.port)
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		svc.server.Close()
	}
}
