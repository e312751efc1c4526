// Package metrics implements the observability hooks with Prometheus collectors.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/flowedit/pkg/observability"
)

const namespace = "flowedit"

// Collector holds every flowedit metric. It implements
// observability.EditorHooks, observability.SessionHooks and
// observability.HTTPHooks.
type Collector struct {
	// Editor metrics
	Commits       *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	NoOps         *prometheus.CounterVec
	Undos         prometheus.Counter
	Redos         prometheus.Counter
	Layouts       *prometheus.CounterVec
	LayoutSeconds prometheus.Histogram
	GraphNodes    prometheus.Histogram

	// Session metrics
	ActiveSessions prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Passing a fresh
// registry per test avoids duplicate registration panics.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Commits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "History commits by action.",
		}, []string{"action"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_rejections_total",
			Help:      "Connections refused by rule.",
		}, []string{"rule"}),
		NoOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noop_operations_total",
			Help:      "Operations that had nothing to do.",
		}, []string{"op"}),
		Undos: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Successful undo steps.",
		}),
		Redos: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redo_total",
			Help:      "Successful redo steps.",
		}),
		Layouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layout passes by result.",
		}, []string{"result"}),
		LayoutSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing layouts.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		GraphNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of committed snapshots.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live editing sessions.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers c as the process-wide editor, session and HTTP hooks.
func (c *Collector) Install() {
	observability.SetEditorHooks(c)
	observability.SetSessionHooks(c)
	observability.SetHTTPHooks(c)
}

func (c *Collector) OnCommit(_ context.Context, action string, nodes, _ int) {
	c.Commits.WithLabelValues(action).Inc()
	c.GraphNodes.Observe(float64(nodes))
}

func (c *Collector) OnReject(_ context.Context, rule string) {
	c.Rejections.WithLabelValues(rule).Inc()
}

func (c *Collector) OnNoOp(_ context.Context, op string) {
	c.NoOps.WithLabelValues(op).Inc()
}

func (c *Collector) OnUndo(context.Context, string) { c.Undos.Inc() }

func (c *Collector) OnRedo(context.Context, string) { c.Redos.Inc() }

func (c *Collector) OnLayout(_ context.Context, _ int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Layouts.WithLabelValues(result).Inc()
	c.LayoutSeconds.Observe(d.Seconds())
}

func (c *Collector) OnSessionCreated(context.Context, string) { c.ActiveSessions.Inc() }

func (c *Collector) OnSessionClosed(context.Context, string) { c.ActiveSessions.Dec() }

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.EditorHooks  = (*Collector)(nil)
	_ observability.SessionHooks = (*Collector)(nil)
	_ observability.HTTPHooks    = (*Collector)(nil)
)
