package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/nerrad567/graylogging/internal/infrastructure/mqtt"
)

func TestNewMQTTDefaults(t *testing.T) {
	client := NewMQTT("broker", 0, MQTTOptions{})

	if client.cfg.Port != DefaultMQTTPort {
		t.Errorf("Port = %d, want %d", client.cfg.Port, DefaultMQTTPort)
	}
	if client.qos != DefaultMQTTQoS {
		t.Errorf("qos = %d, want %d", client.qos, DefaultMQTTQoS)
	}
	if got := client.Topic("web-01"); got != mqtt.TopicPrefixGELF+"/web-01" {
		t.Errorf("Topic() = %q", got)
	}
}

func TestNewMQTTExplicitOptions(t *testing.T) {
	qos := byte(0)
	client := NewMQTT("broker", 8883, MQTTOptions{
		TLS:      true,
		ClientID: "fixed",
		Username: "u",
		Password: "p",
		QoS:      &qos,
		Topic:    "logs",
	})

	want := mqtt.Config{Host: "broker", Port: 8883, TLS: true, ClientID: "fixed", Username: "u", Password: "p"}
	if client.cfg != want {
		t.Errorf("cfg = %+v, want %+v", client.cfg, want)
	}
	if client.qos != 0 {
		t.Errorf("qos = %d, want 0", client.qos)
	}
	if got := client.Topic("h1"); got != "logs/h1" {
		t.Errorf("Topic() = %q, want logs/h1", got)
	}
}

func TestNewClientID(t *testing.T) {
	a, b := newClientID(), newClientID()

	if len(a) != maxClientIDLen || !strings.HasPrefix(a, "gelf-") {
		t.Errorf("newClientID() = %q", a)
	}
	if a == b {
		t.Errorf("newClientID() repeated %q", a)
	}
}

func TestMQTTSendFailureIsSwallowed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	var logs bytes.Buffer
	obs := &recordingObserver{}
	client := NewMQTT("127.0.0.1", port, MQTTOptions{
		Options: Options{Logger: bufferLogger(&logs), Observer: obs},
	})

	result, err := client.Send(context.Background(), testPayload())
	if err != nil || result != nil {
		t.Fatalf("Send() = %v, %v; want nil, nil", result, err)
	}

	d := obs.all()
	if len(d) != 1 || d[0].kind != KindMQTT || !errors.Is(d[0].err, mqtt.ErrConnectionFailed) {
		t.Errorf("deliveries = %+v, want one mqtt connection failure", d)
	}
	if !strings.Contains(logs.String(), "transport=mqtt") {
		t.Errorf("log output missing transport:\n%s", logs.String())
	}
}

func TestMQTTSendCancelled(t *testing.T) {
	obs := &recordingObserver{}
	client := NewMQTT("127.0.0.1", 1, MQTTOptions{Options: Options{Observer: obs}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Send(ctx, testPayload()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	d := obs.all()
	if len(d) != 1 || !errors.Is(d[0].err, context.Canceled) {
		t.Errorf("deliveries = %+v, want context.Canceled", d)
	}
}
