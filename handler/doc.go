// Package handler is a log/slog Handler that ships every record to Graylog
// as one GELF payload.
//
// Each Handle call formats the record with gelf.Format, builds a fresh
// transport client for the configured Kind, sends, and discards the client.
// Nothing is buffered and no connection outlives a record.
//
//	h, err := handler.New(handler.Options{
//	    Host:      "graylog.internal",
//	    Port:      12201,
//	    Transport: transport.KindUDP,
//	    Facility:  "local6",
//	    AppName:   "billing",
//	})
//	if err != nil {
//	    return err
//	}
//	logger := slog.New(h)
//	logger.Info("invoice sent", "invoice_id", 42)
//
// Delivery failures never reach the caller of the slog.Logger. They are
// handed to Options.OnError, which by default prints a report to stderr.
package handler
