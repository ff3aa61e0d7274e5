package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/graylogging/transport"
)

// Measurement and tag names written by ObserveDelivery.
const (
	measurementDelivery = "gelf_delivery"
	tagTransport        = "transport"
	tagStatus           = "status"
	fieldElapsedMS      = "elapsed_ms"
	fieldError          = "error"
)

var _ transport.Observer = (*Client)(nil)

// ObserveDelivery writes one gelf_delivery point per attempt.
// The write is non-blocking; points are batched and sent asynchronously.
func (c *Client) ObserveDelivery(kind transport.Kind, err error, elapsed time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.open {
		return
	}
	c.writeAPI.WritePoint(deliveryPoint(kind, err, elapsed, time.Now()))
}

// deliveryPoint builds the point for one attempt. The error text is a field,
// not a tag, so it does not add series cardinality.
func deliveryPoint(kind transport.Kind, err error, elapsed time.Duration, at time.Time) *write.Point {
	status := "success"
	fields := map[string]interface{}{
		fieldElapsedMS: float64(elapsed) / float64(time.Millisecond),
	}
	if err != nil {
		status = "failure"
		fields[fieldError] = err.Error()
	}

	return write.NewPoint(
		measurementDelivery,
		map[string]string{
			tagTransport: kind.String(),
			tagStatus:    status,
		},
		fields,
		at,
	)
}
