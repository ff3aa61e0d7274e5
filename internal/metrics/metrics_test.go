package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/graylogging/transport"
)

func TestObserveDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)

	obs.ObserveDelivery(transport.KindUDP, nil, time.Millisecond)
	obs.ObserveDelivery(transport.KindUDP, nil, time.Millisecond)
	obs.ObserveDelivery(transport.KindHTTP, &transport.StatusError{StatusCode: 500}, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"udp success", testutil.ToFloat64(obs.Deliveries.WithLabelValues("udp", StatusSuccess)), 2},
		{"http failure", testutil.ToFloat64(obs.Deliveries.WithLabelValues("http", StatusFailure)), 1},
		{"http status reason", testutil.ToFloat64(obs.Failures.WithLabelValues("http", "http_status")), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("counter = %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(obs.Duration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestNewObserverRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewObserver(reg)

	defer func() {
		if recover() == nil {
			t.Error("second NewObserver on the same registry did not panic")
		}
	}()
	NewObserver(reg)
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&transport.StatusError{StatusCode: 502}, "http_status"},
		{fmt.Errorf("%w: boom", transport.ErrServerReported), "server_reported"},
		{fmt.Errorf("%w: %w", transport.ErrTransport, context.DeadlineExceeded), "timeout"},
		{fmt.Errorf("%w: %w", transport.ErrTransport, context.Canceled), "canceled"},
		{errors.New("connection refused"), "network"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
