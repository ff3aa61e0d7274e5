package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/graylogging/gelf"
	"github.com/nerrad567/graylogging/internal/infrastructure/mqtt"
)

// MQTT defaults.
const (
	// DefaultMQTTPort is the plain MQTT port.
	DefaultMQTTPort = 1883

	// DefaultMQTTQoS asks the broker for at-least-once delivery.
	DefaultMQTTQoS = 1

	// maxClientIDLen is the longest client ID every MQTT 3.1 broker accepts.
	maxClientIDLen = 23
)

// MQTTOptions configures NewMQTT.
type MQTTOptions struct {
	Options

	TLS      bool
	Username string
	Password string

	// ClientID is fixed when set; otherwise every send uses a fresh
	// "gelf-<random>" ID so concurrent sends never evict each other.
	ClientID string

	// QoS is 0, 1 or 2. Nil selects DefaultMQTTQoS.
	QoS *byte

	// Topic is the prefix; the payload host is appended as the last level.
	// Empty selects mqtt.TopicPrefixGELF.
	Topic string
}

// MQTTClient publishes each payload on its own broker connection.
type MQTTClient struct {
	cfg    mqtt.Config
	qos    byte
	prefix string
	bestEffort
}

// NewMQTT returns a client for the broker at host:port. A zero port selects
// DefaultMQTTPort.
func NewMQTT(host string, port int, opts MQTTOptions) *MQTTClient {
	if port == 0 {
		port = DefaultMQTTPort
	}
	qos := byte(DefaultMQTTQoS)
	if opts.QoS != nil {
		qos = *opts.QoS
	}

	cfg := mqtt.Config{
		Host:     host,
		Port:     port,
		TLS:      opts.TLS,
		ClientID: opts.ClientID,
		Username: opts.Username,
		Password: opts.Password,
	}

	return &MQTTClient{
		cfg:        cfg,
		qos:        qos,
		prefix:     opts.Topic,
		bestEffort: newBestEffort(KindMQTT, joinHostPort(host, port), opts.Options),
	}
}

// Topic returns the topic a payload from host is published on.
func (c *MQTTClient) Topic(host string) string {
	return mqtt.Topics{}.GELF(c.prefix, host)
}

// Send validates p and publishes it. Broker failures are logged and reported
// to the Observer but not returned.
func (c *MQTTClient) Send(ctx context.Context, p gelf.Payload) (Result, error) {
	if err := gelf.Validate(p); err != nil {
		return nil, err
	}
	data, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	host, _ := p[gelf.FieldHost].(string)

	start := time.Now()
	err = c.publish(ctx, c.Topic(host), data)
	c.report(err, time.Since(start), data)

	return nil, nil
}

func (c *MQTTClient) publish(ctx context.Context, topic string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	cfg := c.cfg
	if cfg.ClientID == "" {
		cfg.ClientID = newClientID()
	}
	if deadline, ok := ctx.Deadline(); ok {
		cfg.ConnectTimeout = time.Until(deadline)
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer client.Close()

	if err := client.Publish(topic, data, c.qos, false); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// newClientID returns "gelf-" followed by random hex, cut to maxClientIDLen.
func newClientID() string {
	id := "gelf-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:maxClientIDLen]
}
