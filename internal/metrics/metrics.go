// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var processStart = time.Now()

var (
	// Ingest Metrics
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_messages_received_total",
			Help: "Total number of vessel reports received",
		},
		[]string{"kind"}, // "position", "static"
	)

	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_messages_dropped_total",
			Help: "Total number of vessel reports dropped before tracking",
		},
		[]string{"reason"}, // "blacklist", "invalid_mmsi", "filter_bbox", "filter_shipname", "downsample", "out_of_sequence", "decode"
	)

	// Tracker Metrics
	ActiveTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_active_tracks",
			Help: "Current number of tracks held by the tracking service",
		},
	)

	CellTransitions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_cell_transitions_total",
			Help: "Total number of grid cell transitions",
		},
	)

	TracksStale = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_tracks_stale_total",
			Help: "Total number of tracks removed as stale",
		},
	)

	// Analysis Metrics
	AnalysesPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_analyses_total",
			Help: "Total number of analyses performed",
		},
		[]string{"analysis"},
	)

	AnalysisSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_analysis_skips_total",
			Help: "Total number of analyses skipped for missing or excluded attributes",
		},
		[]string{"analysis", "reason"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seawatch_analysis_duration_seconds",
			Help:    "Duration of a single analysis run in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"analysis"},
	)

	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_verdicts_total",
			Help: "Total number of per-message analysis verdicts",
		},
		[]string{"class", "verdict"}, // verdict: "abnormal", "normal"
	)

	BehaviourNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_behaviour_notifications_total",
			Help: "Total number of behaviour manager notifications",
		},
		[]string{"class", "kind"}, // kind: "raise", "maintain", "lower"
	)

	// Event Store Metrics
	EventsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_events_persisted_total",
			Help: "Total number of event saves",
		},
		[]string{"class", "state"},
	)

	EventStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seawatch_event_store_duration_seconds",
			Help:    "Duration of event store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	EventStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_event_store_errors_total",
			Help: "Total number of failed event store operations",
		},
		[]string{"operation"},
	)

	// Statistics Cache Metrics
	StatisticsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_statistics_cache_hits_total",
			Help: "Total number of histogram lookups served from cache",
		},
	)

	StatisticsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_statistics_cache_misses_total",
			Help: "Total number of histogram lookups that reached the store",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seawatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_websocket_connections",
			Help: "Current number of live feed connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seawatch_websocket_messages_sent_total",
			Help: "Total number of live feed messages sent",
		},
	)

	// Notifier Metrics
	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_notifications_delivered_total",
			Help: "Total number of event notifications delivered",
		},
		[]string{"notifier", "result"}, // result: "success", "failure", "rate_limited"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seawatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Publisher Metrics
	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seawatch_messages_published_total",
			Help: "Total number of event lifecycle messages published",
		},
		[]string{"topic", "result"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seawatch_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seawatch_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordMessageReceived counts an incoming report of the given kind.
func RecordMessageReceived(kind string) {
	MessagesReceived.WithLabelValues(kind).Inc()
}

// RecordMessageDropped counts a report dropped for reason.
func RecordMessageDropped(reason string) {
	MessagesDropped.WithLabelValues(reason).Inc()
}

// SetActiveTracks sets the active tracks gauge
func SetActiveTracks(n int) {
	ActiveTracks.Set(float64(n))
}

// RecordCellTransition counts a cell transition
func RecordCellTransition() {
	CellTransitions.Inc()
}

// RecordTrackStale counts a stale track
func RecordTrackStale() {
	TracksStale.Inc()
}

// RecordAnalysis counts a completed analysis and observes its duration.
func RecordAnalysis(analysis string, duration time.Duration) {
	AnalysesPerformed.WithLabelValues(analysis).Inc()
	AnalysisDuration.WithLabelValues(analysis).Observe(duration.Seconds())
}

// RecordAnalysisSkip counts an analysis skipped for reason.
func RecordAnalysisSkip(analysis, reason string) {
	AnalysisSkips.WithLabelValues(analysis, reason).Inc()
}

// RecordVerdict counts a verdict delivered to the behaviour manager.
func RecordVerdict(class string, abnormal bool) {
	verdict := "normal"
	if abnormal {
		verdict = "abnormal"
	}
	Verdicts.WithLabelValues(class, verdict).Inc()
}

// RecordBehaviourNotification counts a raise, maintain or lower notification.
func RecordBehaviourNotification(class, kind string) {
	BehaviourNotifications.WithLabelValues(class, kind).Inc()
}

// RecordEventPersisted counts a saved event
func RecordEventPersisted(class, state string) {
	EventsPersisted.WithLabelValues(class, state).Inc()
}

// RecordEventStoreOperation observes an event store call
func RecordEventStoreOperation(operation string, duration time.Duration, err error) {
	EventStoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		EventStoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordStatisticsCache counts a statistics cache hit or miss
func RecordStatisticsCache(hit bool) {
	if hit {
		StatisticsCacheHits.Inc()
	} else {
		StatisticsCacheMisses.Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordNotification counts a notifier delivery attempt
func RecordNotification(notifier, result string) {
	NotificationsDelivered.WithLabelValues(notifier, result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the
// state gauge. States use the gobreaker names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordPublish counts a publish attempt on topic
func RecordPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublished.WithLabelValues(topic, result).Inc()
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// SetWebSocketConnections sets the live feed connection gauge
func SetWebSocketConnections(n int) {
	WSConnections.Set(float64(n))
}

// RecordWebSocketMessageSent counts a message written to a live feed client
func RecordWebSocketMessageSent() {
	WSMessagesSent.Inc()
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// UpdateUptime sets the uptime gauge. Called on each scrape.
func UpdateUptime() {
	AppUptime.Set(time.Since(processStart).Seconds())
}
