package influxdb

import "errors"

var (
	// ErrConnectionFailed indicates the server could not be reached at Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates metrics.influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	errServerUnhealthy = errors.New("server not healthy")
)
