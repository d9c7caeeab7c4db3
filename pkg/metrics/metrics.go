package metrics

import (
	"runtime"

	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	// Conversion metrics
	RenderTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adf_render_total",
		Help: "Total number of ADF documents rendered to Markdown",
	})

	RenderWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adf_render_warnings_total",
			Help: "Total number of conversion warnings by type",
		},
		[]string{"type"},
	)

	RenderOutputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adf_render_output_bytes",
		Help:    "Size of rendered Markdown",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	})

	CoerceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adf_coerce_total",
			Help: "Total number of values coerced into ADF documents",
		},
		[]string{"input"},
	)

	// Tool metrics
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)
)

// ObserveRender records one finished render.
func ObserveRender(res adf.Result) {
	RenderTotal.Inc()
	RenderOutputBytes.Observe(float64(len(res.Markdown)))
	for _, w := range res.Warnings {
		RenderWarnings.WithLabelValues(string(w.Type)).Inc()
	}
}

// ObserveCoerce records a coercion of the given input kind ("text", "json", ...).
func ObserveCoerce(input string) {
	CoerceTotal.WithLabelValues(input).Inc()
}

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
