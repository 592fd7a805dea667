// Package metrics decorates the event bus with Prometheus instrumentation.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
)

// Bus is the inner bus the decorator wraps.
type Bus interface {
	porteventbus.EventBus
	porteventbus.Inspector
}

// EventBus counts posts, handler failures and subscriptions, and times dispatch.
type EventBus struct {
	inner Bus

	posts         *prometheus.CounterVec
	failures      *prometheus.CounterVec
	dispatch      *prometheus.HistogramVec
	subscriptions *prometheus.CounterVec
	rejected      prometheus.Counter
}

func NewEventBus(inner Bus, reg prometheus.Registerer) *EventBus {
	b := &EventBus{
		inner: inner,
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polybus",
			Name:      "events_posted_total",
			Help:      "Events posted, by category.",
		}, []string{"category"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polybus",
			Name:      "handler_failures_total",
			Help:      "Handler invocations that returned an error or panicked, by category.",
		}, []string{"category"}),
		dispatch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polybus",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent running every handler for one post.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"category"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polybus",
			Name:      "subscription_changes_total",
			Help:      "Subscribe and unsubscribe calls.",
		}, []string{"op"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polybus",
			Name:      "subscriptions_rejected_total",
			Help:      "Subscribe calls refused because the listener was invalid or malformed.",
		}),
	}
	reg.MustRegister(b.posts, b.failures, b.dispatch, b.subscriptions, b.rejected, b.bindingsCollector())
	return b
}

func (b *EventBus) Subscribe(listener any) error {
	if err := b.inner.Subscribe(listener); err != nil {
		b.rejected.Inc()
		return err
	}
	b.subscriptions.WithLabelValues("subscribe").Inc()
	return nil
}

func (b *EventBus) Unsubscribe(listener any) {
	b.inner.Unsubscribe(listener)
	b.subscriptions.WithLabelValues("unsubscribe").Inc()
}

func (b *EventBus) Post(e any) error {
	return b.observe(e, b.inner.Post)
}

func (b *EventBus) PostAll(e any) error {
	return b.observe(e, b.inner.PostAll)
}

func (b *EventBus) Categories() []event.CategoryStats {
	return b.inner.Categories()
}

func (b *EventBus) observe(e any, post func(any) error) error {
	if e == nil {
		return post(e)
	}
	label := categoryLabel(event.CategoryOf(e))
	b.posts.WithLabelValues(label).Inc()

	start := time.Now()
	err := post(e)
	b.dispatch.WithLabelValues(label).Observe(time.Since(start).Seconds())

	for _, failure := range multierr.Errors(err) {
		var invErr *memeventbus.HandlerInvocationError
		if errors.As(failure, &invErr) {
			b.failures.WithLabelValues(label).Inc()
		}
	}
	return err
}

// bindingsCollector reports the live binding count of every bucket at scrape time.
func (b *EventBus) bindingsCollector() prometheus.Collector {
	desc := prometheus.NewDesc(
		"polybus_bindings",
		"Handlers currently bound, by category.",
		[]string{"category"}, nil,
	)
	return &gaugeFunc{desc: desc, collect: func(ch chan<- prometheus.Metric) {
		for _, s := range b.inner.Categories() {
			label := s.Name
			if label == "" {
				label = s.Category
			}
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(s.Bindings), label)
		}
	}}
}

type gaugeFunc struct {
	desc    *prometheus.Desc
	collect func(chan<- prometheus.Metric)
}

func (g *gaugeFunc) Describe(ch chan<- *prometheus.Desc) { ch <- g.desc }
func (g *gaugeFunc) Collect(ch chan<- prometheus.Metric) { g.collect(ch) }

// categoryLabel keeps label cardinality bounded to the catalog plus the raw type name.
func categoryLabel(c event.Category) string {
	if name := event.NameOf(c); name != "" {
		return name
	}
	return c.String()
}
