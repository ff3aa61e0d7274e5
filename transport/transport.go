package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/graylogging/gelf"
)

// Kind selects one wire protocol. The set is closed; use ParseKind to turn a
// configured name into a Kind.
type Kind int

// Supported transports.
const (
	KindTCP Kind = iota + 1
	KindUDP
	KindHTTP
	KindKafka
	KindMQTT
)

var kindNames = map[Kind]string{
	KindTCP:   "tcp",
	KindUDP:   "udp",
	KindHTTP:  "http",
	KindKafka: "kafka",
	KindMQTT:  "mqtt",
}

// String returns the lower-case transport name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the supported transports.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a case-insensitive transport name to its Kind.
func ParseKind(name string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a valid transport type", ErrUnsupportedTransport, name)
}

// Result is the decoded outcome of a send. Only the HTTP client fills it;
// it always carries "status_code".
type Result map[string]any

// Client delivers one payload per call.
type Client interface {
	Send(ctx context.Context, p gelf.Payload) (Result, error)
}

// Observer is told about every delivery attempt that reached the network
// stage, whether or not the failure is returned to the caller.
type Observer interface {
	ObserveDelivery(kind Kind, err error, elapsed time.Duration)
}

// Observers fans a delivery out to several observers.
type Observers []Observer

// ObserveDelivery implements Observer.
func (o Observers) ObserveDelivery(kind Kind, err error, elapsed time.Duration) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveDelivery(kind, err, elapsed)
		}
	}
}

// Options are shared by every client.
type Options struct {
	// Logger receives local failure reports. It must not route back into a
	// handler that uses this client. Nil logs text to stderr.
	Logger *slog.Logger

	// Observer is optional.
	Observer Observer
}

// Config carries everything New needs for any Kind. Only the section for
// the selected Kind is read.
type Config struct {
	Host string
	Port int

	Options

	UDP   UDPOptions
	HTTP  HTTPOptions
	Kafka KafkaOptions
	MQTT  MQTTOptions
}

// New builds a client for kind. It is the only place that switches over Kind.
//
// Parameters:
//   - kind: one of the Kind constants
//   - cfg: host, port and per-transport options
//
// Returns:
//   - Client: ready to Send; no connection is opened yet
//   - error: ErrUnsupportedTransport for an unknown kind
func New(kind Kind, cfg Config) (Client, error) {
	switch kind {
	case KindTCP:
		return NewTCP(cfg.Host, cfg.Port, cfg.Options), nil
	case KindUDP:
		opts := cfg.UDP
		opts.Options = cfg.Options
		return NewUDP(cfg.Host, cfg.Port, opts), nil
	case KindHTTP:
		opts := cfg.HTTP
		opts.Options = cfg.Options
		return NewHTTP(cfg.Host, cfg.Port, opts), nil
	case KindKafka:
		opts := cfg.Kafka
		opts.Options = cfg.Options
		if len(opts.Brokers) == 0 {
			opts.Brokers = []string{joinHostPort(cfg.Host, cfg.Port)}
		}
		return NewKafka(opts), nil
	case KindMQTT:
		opts := cfg.MQTT
		opts.Options = cfg.Options
		return NewMQTT(cfg.Host, cfg.Port, opts), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTransport, kind)
	}
}

// encodePayload serialises p as compact UTF-8 JSON without a trailing newline.
func encodePayload(p gelf.Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encoding gelf payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// bestEffort holds what the fire-and-forget clients share: where failures
// are logged and who is told about each attempt.
type bestEffort struct {
	kind     Kind
	target   string
	logger   *slog.Logger
	observer Observer
}

func newBestEffort(kind Kind, target string, opts Options) bestEffort {
	logger := opts.Logger
	if logger == nil {
		logger = stderrLogger()
	}
	return bestEffort{
		kind:     kind,
		target:   target,
		logger:   logger,
		observer: opts.Observer,
	}
}

// report records one attempt. A failure is logged with the encoded entry and
// then dropped.
func (b bestEffort) report(err error, elapsed time.Duration, entry []byte) {
	if b.observer != nil {
		b.observer.ObserveDelivery(b.kind, err, elapsed)
	}
	if err == nil {
		return
	}
	b.logger.Error("failed to send gelf message",
		"transport", b.kind.String(),
		"target", b.target,
		"error", err,
		"entry", string(entry),
	)
}

// stderrLogger is the fallback local logger. slog.Default is avoided on
// purpose: it may be a logger backed by the GELF handler itself.
func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "graylogging")
}
