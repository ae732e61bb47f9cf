package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry served on /api/metrics. It is separate from the
// default registry so tests can construct the package without collisions.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Remote mentor API client metrics
	MentorAPIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentor_api_client_request_duration_seconds",
			Help:    "Remote mentor API request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	MentorAPIRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_api_client_request_total",
			Help: "Total number of remote mentor API requests",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// Token store metrics
	TokenStoreReads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_store_reads_total",
			Help: "Total number of auth token lookups",
		},
		[]string{"backend", "status"},
	)

	// Business Metrics
	MentorListFetches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_list_fetch_total",
			Help: "Mentor list fetches by outcome (loaded, empty, error, discarded)",
		},
		[]string{"outcome"},
	)

	MentorListResults = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentor_list_results",
			Help:    "Number of mentors returned per processed fetch",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200, 500},
		},
	)

	MentorListEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_list_events_total",
			Help: "View events handled by mentor list controllers",
		},
		[]string{"event"},
	)

	// MCP Metrics
	MCPToolInvocations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_tool_invocations_total",
			Help: "Total number of MCP tool invocations",
		},
		[]string{"tool", "status"},
	)

	MCPToolDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_tool_duration_seconds",
			Help:    "MCP tool call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"tool"},
	)

	MCPErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_errors_total",
			Help: "MCP requests answered with a JSON-RPC error",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
