// Package influxdb records GELF delivery attempts in InfluxDB.
//
// The Client implements transport.Observer on top of the influxdb-client-go
// v2 batching write API, so it can be handed to handler.Options directly:
//
//	client, err := influxdb.Connect(ctx, cfg.Metrics.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	h, err := handler.New(handler.Options{Host: "graylog", Observer: client})
//
// Every attempt becomes one "gelf_delivery" point tagged with the transport
// and outcome, carrying the elapsed time in milliseconds.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Writes are non-blocking and batch errors are delivered to the SetOnError
// callback. Only Connect returns errors. Call Flush before reading results
// that depend on the points having landed.
package influxdb
