package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nerrad567/graylogging/gelf"
)

// DefaultKafkaTopic is used when KafkaOptions.Topic is empty.
const DefaultKafkaTopic = "gelf"

// KafkaOptions configures NewKafka. The Graylog side is a "GELF Kafka" input
// consuming Topic.
type KafkaOptions struct {
	Options

	Brokers []string
	Topic   string
}

// KafkaClient writes each payload as one Kafka message through a writer
// that lives only for that call.
type KafkaClient struct {
	brokers []string
	topic   string
	bestEffort
}

// NewKafka returns a client for the given brokers.
func NewKafka(opts KafkaOptions) *KafkaClient {
	topic := opts.Topic
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	brokers := append([]string(nil), opts.Brokers...)
	target := strings.Join(brokers, ",") + "/" + topic

	return &KafkaClient{
		brokers:    brokers,
		topic:      topic,
		bestEffort: newBestEffort(KindKafka, target, opts.Options),
	}
}

// Send validates p and produces it. Broker failures are logged and reported
// to the Observer but not returned.
func (c *KafkaClient) Send(ctx context.Context, p gelf.Payload) (Result, error) {
	if err := gelf.Validate(p); err != nil {
		return nil, err
	}
	data, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = c.produce(ctx, c.message(p, data))
	c.report(err, time.Since(start), data)

	return nil, nil
}

func (c *KafkaClient) produce(ctx context.Context, msg kafka.Message) error {
	w := c.writer()
	err := w.WriteMessages(ctx, msg)
	if closeErr := w.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

func (c *KafkaClient) writer() *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.brokers...),
		Topic:        c.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  1,
	}
}

// message keys by the payload host. With the Hash balancer one host always
// maps to the same partition, so its events stay ordered.
func (c *KafkaClient) message(p gelf.Payload, data []byte) kafka.Message {
	host, _ := p[gelf.FieldHost].(string)
	return kafka.Message{
		Key:   []byte(host),
		Value: data,
		Time:  time.Now(),
	}
}
