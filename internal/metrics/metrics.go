// Package metrics publishes the engine's observable counters over
// Prometheus, grounded on the collector shape in
// VictorVVedtion-perp-dex/metrics/prometheus.go but cut down to the single-
// symbol surface this engine actually has: trades, submit outcomes
// (including rejects), cancels, replaces, live-order count, spread, and
// submit latency. There is no market_id/side/type
// label cardinality here because there is exactly one instrument and the
// engine itself does not track order type.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds every metric this service publishes.
type Collector struct {
	TradesTotal    prometheus.Counter
	TradeVolume    prometheus.Counter
	OrdersTotal    *prometheus.CounterVec // labeled by the result string passed to RecordSubmit
	OrdersLive     prometheus.Gauge
	CancelsTotal   *prometheus.CounterVec // labeled by outcome: ok/miss
	ReplacesTotal  *prometheus.CounterVec // labeled by outcome: ok/miss
	SubmitLatency  prometheus.Histogram
	BestSpread     prometheus.Gauge
}

// GetCollector returns the process-wide singleton collector, registering
// it with the default Prometheus registry on first use.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchd",
			Subsystem: "trades",
			Name:      "total",
			Help:      "Total number of trades emitted by the matching engine.",
		}),
		TradeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchd",
			Subsystem: "trades",
			Name:      "volume_total",
			Help:      "Total quantity traded across all fills.",
		}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchd",
			Subsystem: "orders",
			Name:      "submitted_total",
			Help:      "Total Submit calls by outcome.",
		}, []string{"result"}),
		OrdersLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchd",
			Subsystem: "orders",
			Name:      "live",
			Help:      "Count of currently-resting orders (engine.LiveOrders()).",
		}),
		CancelsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchd",
			Subsystem: "orders",
			Name:      "cancels_total",
			Help:      "Total Cancel calls by outcome.",
		}, []string{"outcome"}),
		ReplacesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchd",
			Subsystem: "orders",
			Name:      "replaces_total",
			Help:      "Total Replace calls by outcome.",
		}, []string{"outcome"}),
		SubmitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchd",
			Subsystem: "engine",
			Name:      "submit_latency_microseconds",
			Help:      "Wall-clock latency of a single Submit call.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
		BestSpread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchd",
			Subsystem: "book",
			Name:      "spread_ticks",
			Help:      "Current best ask minus best bid, in ticks. -1 if either side is empty.",
		}),
	}

	prometheus.MustRegister(
		c.TradesTotal,
		c.TradeVolume,
		c.OrdersTotal,
		c.OrdersLive,
		c.CancelsTotal,
		c.ReplacesTotal,
		c.SubmitLatency,
		c.BestSpread,
	)
	return c
}

// RecordSubmit records the outcome of a single Submit call.
func (c *Collector) RecordSubmit(result string) {
	c.OrdersTotal.WithLabelValues(result).Inc()
}

// RecordTrade increments the trade counter and volume total for one fill.
func (c *Collector) RecordTrade(qty int64) {
	c.TradesTotal.Inc()
	c.TradeVolume.Add(float64(qty))
}

// RecordCancel records whether a Cancel call found its id.
func (c *Collector) RecordCancel(ok bool) {
	if ok {
		c.CancelsTotal.WithLabelValues("ok").Inc()
	} else {
		c.CancelsTotal.WithLabelValues("miss").Inc()
	}
}

// RecordReplace records whether a Replace call found its id.
func (c *Collector) RecordReplace(ok bool) {
	if ok {
		c.ReplacesTotal.WithLabelValues("ok").Inc()
	} else {
		c.ReplacesTotal.WithLabelValues("miss").Inc()
	}
}

// SetLiveOrders publishes the current live-order gauge.
func (c *Collector) SetLiveOrders(n int) {
	c.OrdersLive.Set(float64(n))
}

// SetSpread publishes the current best bid/ask spread, or -1 if either
// side of the book is empty.
func (c *Collector) SetSpread(spread int32, ok bool) {
	if !ok {
		c.BestSpread.Set(-1)
		return
	}
	c.BestSpread.Set(float64(spread))
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall-clock time for a single call and observes it
// into a histogram in microseconds.
type Timer struct {
	start time.Time
	hist  prometheus.Histogram
}

// NewTimer starts a timer that will record into hist on ObserveDone.
func NewTimer(hist prometheus.Histogram) *Timer {
	return &Timer{start: time.Now(), hist: hist}
}

// ObserveDone records the elapsed time since NewTimer was called.
func (t *Timer) ObserveDone() {
	t.hist.Observe(float64(time.Since(t.start).Microseconds()))
}
