package handler

import (
	"log/slog"
	"time"

	"github.com/nerrad567/graylogging/transport"
)

// Handler defaults.
const (
	// DefaultPort is the conventional GELF input port for TCP, UDP and HTTP.
	DefaultPort = 12201

	// DefaultKafkaPort is used for the derived broker address when Port is 0.
	DefaultKafkaPort = 9092

	// DefaultHTTPTimeout bounds one HTTP delivery made by the handler.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultTransport is used when Options.Transport is zero.
	DefaultTransport = transport.KindTCP
)

// Options configures New.
type Options struct {
	// Host is the Graylog input (or broker) host. Required.
	Host string

	// Port defaults per transport: DefaultPort for tcp/udp/http,
	// DefaultKafkaPort for kafka and transport.DefaultMQTTPort for mqtt.
	Port int

	// Transport defaults to DefaultTransport.
	Transport transport.Kind

	// Facility is a syslog facility name or number (0-23). Nil selects "user".
	Facility any

	// Hostname is sent as the GELF host. Empty resolves the local host name
	// on every record.
	Hostname string

	// AppName is sent as "_application" when set.
	AppName string

	// InsecureSkipVerify disables TLS verification for the http transport.
	InsecureSkipVerify bool

	// CloseOnError drops a failed record silently instead of calling OnError.
	// The per-record client has already been discarded by then, so the next
	// record always starts on a fresh connection.
	CloseOnError bool

	// Level is the minimum level handled. Nil selects slog.LevelInfo.
	Level slog.Leveler

	// HTTPTimeout defaults to DefaultHTTPTimeout.
	HTTPTimeout time.Duration

	// Scheme is "http" or "https" for the http transport.
	Scheme string

	// Compression applies to the udp transport.
	Compression transport.Compression

	// Kafka and MQTT carry the extra settings of those transports. Their
	// embedded transport.Options are ignored in favour of Logger and Observer.
	Kafka transport.KafkaOptions
	MQTT  transport.MQTTOptions

	// LoggerName is sent as "_name".
	LoggerName string

	// AddStack puts the calling goroutine's stack into full_message for
	// records at slog.LevelError and above.
	AddStack bool

	// Logger receives transport-local failure reports. It must not be a
	// logger backed by this handler.
	Logger *slog.Logger

	// Observer is told about every delivery attempt.
	Observer transport.Observer

	// OnError receives formatting and delivery errors. Nil prints a report
	// to stderr.
	OnError func(err error, r slog.Record)
}

func (o Options) port() int {
	if o.Port != 0 {
		return o.Port
	}
	switch o.Transport {
	case transport.KindKafka:
		return DefaultKafkaPort
	case transport.KindMQTT:
		return transport.DefaultMQTTPort
	default:
		return DefaultPort
	}
}

func (o Options) httpTimeout() time.Duration {
	if o.HTTPTimeout > 0 {
		return o.HTTPTimeout
	}
	return DefaultHTTPTimeout
}

// transportConfig is built once in New and shared read-only by every record.
func (o Options) transportConfig() transport.Config {
	shared := transport.Options{Logger: o.Logger, Observer: o.Observer}

	return transport.Config{
		Host:    o.Host,
		Port:    o.port(),
		Options: shared,
		UDP: transport.UDPOptions{
			Compression: o.Compression,
		},
		HTTP: transport.HTTPOptions{
			Scheme:             o.Scheme,
			Timeout:            o.httpTimeout(),
			InsecureSkipVerify: o.InsecureSkipVerify,
		},
		Kafka: o.Kafka,
		MQTT:  o.MQTT,
	}
}
