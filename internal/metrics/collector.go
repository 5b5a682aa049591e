// Package metrics provides a lightweight metrics collector for spotibot.
// Values are kept in-process and logged as a snapshot on shutdown; there
// is no exposition endpoint.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the global metrics collector.
var Collector = NewMetricsCollector()

// MetricsCollector aggregates counters and gauges.
type MetricsCollector struct {
	counters  sync.Map // name -> *Counter
	gauges    sync.Map // name -> *Gauge
	startTime time.Time
}

// NewMetricsCollector creates a new collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startTime: time.Now()}
}

// Uptime returns how long the collector has been running.
func (c *MetricsCollector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Add increments the counter by n.
func (c *Counter) Add(n int64) { c.value.Add(n) }

// Value returns the current counter value.
func (c *Counter) Value() int64 { return c.value.Load() }

// Gauge is a value that can go up and down.
type Gauge struct {
	value atomic.Int64
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v int64) { g.value.Store(v) }

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.value.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.value.Add(-1) }

// Value returns the current gauge value.
func (g *Gauge) Value() int64 { return g.value.Load() }

// Counter returns or creates a counter with the given name.
func (c *MetricsCollector) Counter(name string) *Counter {
	if v, ok := c.counters.Load(name); ok {
		return v.(*Counter)
	}
	ctr := &Counter{}
	actual, _ := c.counters.LoadOrStore(name, ctr)
	return actual.(*Counter)
}

// Gauge returns or creates a gauge with the given name.
func (c *MetricsCollector) Gauge(name string) *Gauge {
	if v, ok := c.gauges.Load(name); ok {
		return v.(*Gauge)
	}
	g := &Gauge{}
	actual, _ := c.gauges.LoadOrStore(name, g)
	return actual.(*Gauge)
}

// Snapshot returns the current value of every registered metric, keyed by
// name. Used for the shutdown summary log.
func (c *MetricsCollector) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	c.counters.Range(func(k, v any) bool {
		out[k.(string)] = v.(*Counter).Value()
		return true
	})
	c.gauges.Range(func(k, v any) bool {
		out[k.(string)] = v.(*Gauge).Value()
		return true
	})
	return out
}

// Predefined metrics used across the bot.
var (
	MessagesReceived = Collector.Counter("spotibot_messages_received_total")
	LinksResolved    = Collector.Counter("spotibot_links_resolved_total")
	TracksDownloaded = Collector.Counter("spotibot_tracks_downloaded_total")
	TracksDelivered  = Collector.Counter("spotibot_tracks_delivered_total")
	WorkflowsFailed  = Collector.Counter("spotibot_workflows_failed_total")
	FilesSwept       = Collector.Counter("spotibot_files_swept_total")
	ActiveWorkflows  = Collector.Gauge("spotibot_active_workflows")
	UsersRegistered  = Collector.Counter("spotibot_users_registered_total")
)
