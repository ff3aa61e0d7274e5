// Package transport delivers GELF payloads to a Graylog input.
//
// Every client validates the payload with gelf.Validate before any I/O and
// then makes exactly one delivery attempt over a fresh connection. Nothing
// is pooled, retried or buffered.
//
// # Delivery Semantics
//
// The transports deliberately differ in how they surface failures:
//
//	┌───────────┬──────────────────────────────┬─────────────────────────────┐
//	│ Kind      │ Wire                         │ Delivery failure            │
//	├───────────┼──────────────────────────────┼─────────────────────────────┤
//	│ tcp       │ JSON + NUL, write half-close │ logged locally, not returned│
//	│ udp       │ one JSON datagram            │ logged locally, not returned│
//	│ http      │ POST /gelf                   │ returned (ErrTransport)     │
//	│ kafka     │ one message on a topic       │ logged locally, not returned│
//	│ mqtt      │ one publish on a topic       │ logged locally, not returned│
//	└───────────┴──────────────────────────────┴─────────────────────────────┘
//
// Socket-style transports never block the logging call site with an error;
// HTTP callers are expected to check the outcome. Validation and encoding
// errors are always returned, whatever the transport.
//
// # Usage
//
//	kind, err := transport.ParseKind("udp")
//	if err != nil {
//	    return err
//	}
//	client, err := transport.New(kind, transport.Config{Host: "graylog", Port: 12201})
//	if err != nil {
//	    return err
//	}
//	_, err = client.Send(ctx, payload)
package transport
