package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/graylogging/internal/infrastructure/config"
	"github.com/nerrad567/graylogging/internal/infrastructure/logging"
	"github.com/nerrad567/graylogging/transport"
)

// clearEnv isolates a test from GRAYLOGGING_* variables set on the host.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvConfigPath,
		"GRAYLOGGING_HOST",
		"GRAYLOGGING_PORT",
		"GRAYLOGGING_TRANSPORT",
		"GRAYLOGGING_APPNAME",
		"GRAYLOGGING_MQTT_USERNAME",
		"GRAYLOGGING_MQTT_PASSWORD",
		"GRAYLOGGING_INFLUXDB_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gelfship.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvConfigPath, "/nonexistent/path/gelfship.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, runOptions{message: "x"}, strings.NewReader(""))
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config error", err)
	}
}

// TestRun_InvalidTransport verifies validation errors surface from run.
func TestRun_InvalidTransport(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
graylog:
  host: 127.0.0.1
  transport: carrier-pigeon
logging:
  level: error
`)

	err := run(context.Background(), runOptions{configPath: path, message: "x"}, strings.NewReader(""))
	if err == nil {
		t.Fatal("run() should fail with an unknown transport")
	}
	if !strings.Contains(err.Error(), "graylog.transport") {
		t.Errorf("run() error = %v, want graylog.transport", err)
	}
}

// TestRun_ForwardsStdinOverUDP runs the whole pipeline against a local collector.
func TestRun_ForwardsStdinOverUDP(t *testing.T) {
	clearEnv(t)

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer conn.Close()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	path := writeConfig(t, fmt.Sprintf(`
graylog:
  host: 127.0.0.1
  port: %d
  transport: udp
  hostname: web-01
  appname: billing
  facility: local0
logging:
  level: error
`, port))

	stdin := strings.NewReader("first line\n\n   \nsecond line\r\n")
	if err := run(context.Background(), runOptions{configPath: path, level: "warn"}, stdin); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var got []map[string]any
	buf := make([]byte, 65535)
	for range 2 {
		if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			t.Fatalf("SetReadDeadline: %v", err)
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			t.Fatalf("ReadFrom: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(buf[:n], &msg); err != nil {
			t.Fatalf("decoding datagram: %v", err)
		}
		got = append(got, map[string]any{
			"short_message": msg["short_message"],
			"host":          msg["host"],
			"level":         msg["level"],
			"_application":  msg["_application"],
			"_name":         msg["_name"],
		})
	}

	want := []map[string]any{
		{"short_message": "first line", "host": "web-01", "level": 4.0, "_application": "billing", "_name": "gelfship"},
		{"short_message": "second line", "host": "web-01", "level": 4.0, "_application": "billing", "_name": "gelfship"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("datagrams mismatch (-want +got):\n%s", diff)
	}
}

// TestRun_RecordsDeliveriesInInfluxDB verifies the influxdb observer is
// flushed before run returns.
func TestRun_RecordsDeliveriesInInfluxDB(t *testing.T) {
	clearEnv(t)

	var (
		mu    sync.Mutex
		lines []string
	)
	influx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/write" {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			lines = append(lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer influx.Close()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer conn.Close()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	path := writeConfig(t, fmt.Sprintf(`
graylog:
  host: 127.0.0.1
  port: %d
  transport: udp
logging:
  level: error
metrics:
  influxdb:
    enabled: true
    url: %s
    flush_interval: 60
`, port, influx.URL))

	if err := run(context.Background(), runOptions{configPath: path, message: "rotated"}, strings.NewReader("")); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "gelf_delivery,status=success,transport=udp ") {
		t.Errorf("influxdb lines = %q, want one successful udp delivery", lines)
	}
}

// TestRun_ReportsHTTPFailures verifies that rejected records fail the run.
func TestRun_ReportsHTTPFailures(t *testing.T) {
	clearEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "input stopped", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing server port: %v", err)
	}

	path := writeConfig(t, fmt.Sprintf(`
graylog:
  host: %s
  port: %d
  transport: http
  http:
    scheme: http
    timeout: 5
logging:
  level: error
`, u.Hostname(), port))

	err = run(context.Background(), runOptions{configPath: path, message: "disk full", level: "error"}, strings.NewReader(""))
	if err == nil {
		t.Fatal("run() should fail when the input rejects records")
	}
	if !strings.Contains(err.Error(), "1 of 1 messages") {
		t.Errorf("run() error = %v, want failure count", err)
	}
}

func TestForward(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name    string
		message string
		stdin   string
		want    int
	}{
		{name: "message wins over stdin", message: "one", stdin: "a\nb\n", want: 1},
		{name: "stdin lines", stdin: "a\nb\nc", want: 3},
		{name: "blank lines skipped", stdin: "\n \n\t\n", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := forward(context.Background(), logger, slog.LevelInfo, tt.message, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("forward() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("forward() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestForward_StopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := forward(ctx, logger, slog.LevelInfo, "", strings.NewReader("a\nb\n"))
	if err == nil {
		t.Fatal("forward() should stop on a cancelled context")
	}
	if sent != 0 {
		t.Errorf("forward() sent = %d, want 0", sent)
	}
}

func TestHandlerOptions(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Graylog.Transport = "mqtt"
	cfg.Graylog.Verify = false
	cfg.Graylog.Level = "warn"
	cfg.Graylog.HTTP.Timeout = 3
	cfg.MQTT.Broker.Host = "broker.local"
	cfg.MQTT.Broker.ClientID = "gelfship-1"
	cfg.MQTT.Auth.Username = "svc"
	cfg.MQTT.QoS = 2

	log := logging.NewWithWriter(&bytes.Buffer{}, cfg.Logging, "test")
	opts, err := handlerOptions(cfg, log, nil, nil)
	if err != nil {
		t.Fatalf("handlerOptions() error = %v", err)
	}

	if opts.Transport != transport.KindMQTT {
		t.Errorf("Transport = %v, want mqtt", opts.Transport)
	}
	if opts.Host != "broker.local" {
		t.Errorf("Host = %q, want broker.local", opts.Host)
	}
	if opts.Port != 0 {
		t.Errorf("Port = %d, want 0 so the mqtt default port applies", opts.Port)
	}
	if !opts.InsecureSkipVerify {
		t.Error("InsecureSkipVerify = false, want true when verify is off")
	}
	if opts.Level.Level() != slog.LevelWarn {
		t.Errorf("Level = %v, want WARN", opts.Level)
	}
	if opts.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", opts.HTTPTimeout)
	}
	if opts.Facility != "user" {
		t.Errorf("Facility = %v, want user", opts.Facility)
	}
	if opts.Observer != nil {
		t.Errorf("Observer = %v, want nil", opts.Observer)
	}
	if opts.MQTT.QoS == nil || *opts.MQTT.QoS != 2 {
		t.Errorf("MQTT.QoS = %v, want 2", opts.MQTT.QoS)
	}
	if opts.MQTT.ClientID != "gelfship-1" || opts.MQTT.Username != "svc" {
		t.Errorf("MQTT identity = %q/%q", opts.MQTT.ClientID, opts.MQTT.Username)
	}
	if opts.MQTT.Topic != "graylog/gelf" {
		t.Errorf("MQTT.Topic = %q, want graylog/gelf", opts.MQTT.Topic)
	}
}

func TestHandlerOptions_Port(t *testing.T) {
	tests := []struct {
		name       string
		transport  string
		port       int
		brokerPort int
		want       int
	}{
		{name: "tcp default", transport: "tcp", want: 0},
		{name: "kafka default", transport: "kafka", want: 0},
		{name: "mqtt default", transport: "mqtt", want: 0},
		{name: "explicit graylog port", transport: "udp", port: 12202, want: 12202},
		{name: "mqtt falls back to graylog port", transport: "mqtt", port: 8883, want: 8883},
		{name: "mqtt broker port wins", transport: "mqtt", port: 8883, brokerPort: 1884, want: 1884},
		{name: "broker port ignored off mqtt", transport: "tcp", brokerPort: 1884, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := config.Load("")
			if err != nil {
				t.Fatalf("config.Load() error = %v", err)
			}
			cfg.Graylog.Transport = tt.transport
			cfg.Graylog.Port = tt.port
			cfg.MQTT.Broker.Port = tt.brokerPort

			log := logging.NewWithWriter(&bytes.Buffer{}, cfg.Logging, "test")
			opts, err := handlerOptions(cfg, log, nil, nil)
			if err != nil {
				t.Fatalf("handlerOptions() error = %v", err)
			}
			if opts.Port != tt.want {
				t.Errorf("Port = %d, want %d", opts.Port, tt.want)
			}
		})
	}
}

func TestHandlerOptions_Compression(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Graylog.UDP.Compression = "brotli"

	log := logging.NewWithWriter(&bytes.Buffer{}, cfg.Logging, "test")
	if _, err := handlerOptions(cfg, log, nil, nil); err == nil {
		t.Error("handlerOptions() should reject an unknown compression")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(config.EnvConfigPath, "/from/env.yaml")
		if got := getConfigPath("/from/flag.yaml"); got != "/from/flag.yaml" {
			t.Errorf("getConfigPath() = %q, want flag", got)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(config.EnvConfigPath, "/from/env.yaml")
		if got := getConfigPath(""); got != "/from/env.yaml" {
			t.Errorf("getConfigPath() = %q, want env", got)
		}
	})

	t.Run("default only when present", func(t *testing.T) {
		t.Setenv(config.EnvConfigPath, "")
		t.Chdir(t.TempDir())
		if got := getConfigPath(""); got != "" {
			t.Errorf("getConfigPath() = %q, want empty", got)
		}

		if err := os.MkdirAll("configs", 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(defaultConfigPath, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if got := getConfigPath(""); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand(strings.NewReader(""))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "gelfship dev") {
		t.Errorf("version output = %q", out.String())
	}
}
