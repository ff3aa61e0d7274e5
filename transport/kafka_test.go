package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewKafkaDefaults(t *testing.T) {
	client := NewKafka(KafkaOptions{Brokers: []string{"k1:9092", "k2:9092"}})

	if client.topic != DefaultKafkaTopic {
		t.Errorf("topic = %q, want %q", client.topic, DefaultKafkaTopic)
	}
	if client.target != "k1:9092,k2:9092/gelf" {
		t.Errorf("target = %q", client.target)
	}

	w := client.writer()
	if w.Topic != DefaultKafkaTopic || w.MaxAttempts != 1 || w.RequiredAcks != kafka.RequireOne {
		t.Errorf("writer = %+v", w)
	}
	if got := w.Addr.String(); got != "k1:9092,k2:9092" {
		t.Errorf("writer Addr = %q", got)
	}
}

func TestKafkaMessageKeyedByHost(t *testing.T) {
	client := NewKafka(KafkaOptions{Brokers: []string{"k:9092"}, Topic: "logs"})
	data := []byte(`{"host":"h1"}`)

	msg := client.message(testPayload(), data)
	if string(msg.Key) != "h1" {
		t.Errorf("Key = %q, want h1", msg.Key)
	}
	if !bytes.Equal(msg.Value, data) {
		t.Errorf("Value = %q, want %q", msg.Value, data)
	}
	if msg.Time.IsZero() {
		t.Error("Time is zero")
	}
}

func TestKafkaSameHostSamePartition(t *testing.T) {
	client := NewKafka(KafkaOptions{Brokers: []string{"k:9092"}})
	w := client.writer()
	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("Balancer = %T, want *kafka.Hash", w.Balancer)
	}

	partitions := []int{0, 1, 2, 3, 4, 5}
	msg := client.message(testPayload(), []byte(`{}`))
	want := w.Balancer.Balance(msg, partitions...)
	for range 10 {
		if got := w.Balancer.Balance(client.message(testPayload(), []byte(`{}`)), partitions...); got != want {
			t.Fatalf("Balance() = %d, want %d for the same host", got, want)
		}
	}
}

func TestKafkaSendFailureIsSwallowed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	var logs bytes.Buffer
	obs := &recordingObserver{}
	client := NewKafka(KafkaOptions{
		Options: Options{Logger: bufferLogger(&logs), Observer: obs},
		Brokers: []string{addr},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.Send(ctx, testPayload())
	if err != nil || result != nil {
		t.Fatalf("Send() = %v, %v; want nil, nil", result, err)
	}

	d := obs.all()
	if len(d) != 1 || d[0].kind != KindKafka || !errors.Is(d[0].err, ErrTransport) {
		t.Errorf("deliveries = %+v, want one kafka failure", d)
	}
	if !strings.Contains(logs.String(), "transport=kafka") {
		t.Errorf("log output missing transport:\n%s", logs.String())
	}
}
