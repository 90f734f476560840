package metrics

import (
	"context"
	"net/http"
	"time"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Tracer = (*Metrics)(nil)

// Metrics is the prometheus-backed Tracer. It owns its registry so that
// tests and embedders can run several instances side by side.
type Metrics struct {
	server *http.Server
	logger *junoUtils.ZapLogger

	queryFetches  *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchRetries  *prometheus.CounterVec
	pollTicks     prometheus.Counter
	mutations     prometheus.Counter
	mutationFails prometheus.Counter
	activeQueries prometheus.Gauge
	latestBlock   prometheus.Gauge
	connected     prometheus.Gauge
}

func NewMetrics(address, chainID string, logger *junoUtils.ZapLogger) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"chain_id": chainID}

	m := Metrics{
		logger: logger,
		queryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "fetches_total",
			Help:        "Total number of fetches issued against the RPC provider",
			ConstLabels: constLabels,
		}, []string{"entity"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "cache_hits_total",
			Help:        "Total number of query reads served from fresh cached data",
			ConstLabels: constLabels,
		}, []string{"entity"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "fetch_errors_total",
			Help:        "Total number of fetches that settled into the error state",
			ConstLabels: constLabels,
		}, []string{"entity"}),
		fetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "fetch_retries_total",
			Help:        "Total number of internal retry attempts",
			ConstLabels: constLabels,
		}, []string{"entity"}),
		pollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "poll_ticks_total",
			Help:        "Total number of watch scheduler ticks",
			ConstLabels: constLabels,
		}),
		mutations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "mutations_submitted_total",
			Help:        "Total number of mutation invocations submitted",
			ConstLabels: constLabels,
		}),
		mutationFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "starknet_query",
			Name:        "mutations_failed_total",
			Help:        "Total number of mutation invocations that failed",
			ConstLabels: constLabels,
		}),
		activeQueries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "starknet_query",
			Name:        "active_queries",
			Help:        "Number of query cache entries with at least one observer",
			ConstLabels: constLabels,
		}),
		latestBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "starknet_query",
			Name:        "latest_block_number",
			Help:        "Latest block number seen by the watch scheduler",
			ConstLabels: constLabels,
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "starknet_query",
			Name:        "connected",
			Help:        "Whether an account connection is currently active",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.queryFetches,
		m.cacheHits,
		m.fetchErrors,
		m.fetchRetries,
		m.pollTicks,
		m.mutations,
		m.mutationFails,
		m.activeQueries,
		m.latestBlock,
		m.connected,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &m
}

func (m *Metrics) Start() error {
	m.logger.Infow("Starting metrics server", "address", m.server.Addr)

	return m.server.ListenAndServe()
}

func (m *Metrics) Stop(ctx context.Context) error {
	m.logger.Info("Stopping metrics server")

	return m.server.Shutdown(ctx)
}

func (m *Metrics) RecordQueryFetch(entity string) {
	m.queryFetches.WithLabelValues(entity).Inc()
}

func (m *Metrics) RecordCacheHit(entity string) {
	m.cacheHits.WithLabelValues(entity).Inc()
}

func (m *Metrics) RecordFetchError(entity string) {
	m.fetchErrors.WithLabelValues(entity).Inc()
}

func (m *Metrics) RecordFetchRetry(entity string) {
	m.fetchRetries.WithLabelValues(entity).Inc()
}

func (m *Metrics) RecordPollTick() {
	m.pollTicks.Inc()
}

func (m *Metrics) RecordMutationSubmitted() {
	m.mutations.Inc()
}

func (m *Metrics) RecordMutationFailed() {
	m.mutationFails.Inc()
}

func (m *Metrics) UpdateActiveQueries(count int) {
	m.activeQueries.Set(float64(count))
}

func (m *Metrics) UpdateLatestBlockNumber(blockNumber uint64) {
	m.latestBlock.Set(float64(blockNumber))
}

func (m *Metrics) UpdateConnected(connected bool) {
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}
