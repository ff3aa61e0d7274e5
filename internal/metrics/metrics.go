// Package metrics exposes GELF delivery counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nerrad567/graylogging/transport"
)

// Delivery outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Observer records every delivery attempt. It implements transport.Observer.
type Observer struct {
	Deliveries *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

var _ transport.Observer = (*Observer)(nil)

// NewObserver registers the delivery metrics with reg.
// Use prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)

	return &Observer{
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graylogging_deliveries_total",
			Help: "Total number of GELF delivery attempts",
		}, []string{"transport", "status"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graylogging_delivery_failures_total",
			Help: "Failed GELF deliveries by reason",
		}, []string{"transport", "reason"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graylogging_delivery_duration_seconds",
			Help:    "Time spent on one GELF delivery attempt",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"transport"}),
	}
}

// ObserveDelivery implements transport.Observer.
func (o *Observer) ObserveDelivery(kind transport.Kind, err error, elapsed time.Duration) {
	name := kind.String()
	o.Duration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err == nil {
		o.Deliveries.WithLabelValues(name, StatusSuccess).Inc()
		return
	}
	o.Deliveries.WithLabelValues(name, StatusFailure).Inc()
	o.Failures.WithLabelValues(name, Reason(err)).Inc()
}

// Reason classifies a delivery error into a low-cardinality label.
func Reason(err error) string {
	var se *transport.StatusError
	switch {
	case errors.As(err, &se):
		return "http_status"
	case errors.Is(err, transport.ErrServerReported):
		return "server_reported"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}
