// gelfship forwards lines of text to Graylog as GELF messages.
//
// It is the operator-facing front end of the graylogging handler: every line
// read from stdin (or the single --message) becomes one slog record, which the
// handler formats and sends over the configured transport.
//
//	echo "backup finished" | gelfship --config configs/gelfship.yaml --level info
//	gelfship -m "disk almost full" -l warn
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nerrad567/graylogging/handler"
	"github.com/nerrad567/graylogging/internal/infrastructure/config"
	"github.com/nerrad567/graylogging/internal/infrastructure/influxdb"
	"github.com/nerrad567/graylogging/internal/infrastructure/logging"
	"github.com/nerrad567/graylogging/internal/metrics"
	"github.com/nerrad567/graylogging/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path, used only when the file exists.
const defaultConfigPath = "configs/gelfship.yaml"

// metricsShutdownTimeout bounds the /metrics server shutdown.
const metricsShutdownTimeout = 5 * time.Second

// runOptions carries the command-line flags into run.
type runOptions struct {
	configPath string
	message    string
	level      string
}

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdin).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:           "gelfship",
		Short:         "Send log lines to Graylog as GELF messages",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdin)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file (default $"+config.EnvConfigPath+")")
	flags.StringVarP(&opts.message, "message", "m", "", "send this message instead of reading stdin")
	flags.StringVarP(&opts.level, "level", "l", "info", "record level: debug, info, warn, error, critical")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gelfship %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: parsed command-line flags
//   - stdin: line source when no --message is given
//
// Returns:
//   - error: nil when every message was handed off, or error describing failure
func run(ctx context.Context, opts runOptions, stdin io.Reader) error {
	// Use default logger until config is loaded
	log := logging.Default()

	configPath := getConfigPath(opts.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Debug("configuration loaded", "path", configPath, "transport", cfg.Graylog.Transport)

	var observers transport.Observers

	if cfg.Metrics.Prometheus.Enabled {
		reg := prometheus.NewRegistry()
		observers = append(observers, metrics.NewObserver(reg))
		stop := serveMetrics(reg, cfg.Metrics.Prometheus.Listen, log)
		defer stop()
	}

	var influxClient *influxdb.Client
	if cfg.Metrics.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.Metrics.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to influxdb: %w", err)
		}
		defer func() {
			log.Debug("closing influxdb")
			influxClient.Close()
		}()
		influxClient.SetOnError(func(err error) {
			log.Warn("influxdb write failed", "error", err)
		})
		observers = append(observers, influxClient)
	}

	var observer transport.Observer
	if len(observers) > 0 {
		observer = observers
	}

	var failures atomic.Int64
	hopts, err := handlerOptions(cfg, log, observer, func(err error, r slog.Record) {
		failures.Add(1)
		log.Error("gelf delivery failed", "error", err, "message", r.Message)
	})
	if err != nil {
		return err
	}

	h, err := handler.New(hopts)
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}
	shipper := slog.New(h)
	level := logging.ParseLevel(opts.level)

	sent, err := forward(ctx, shipper, level, opts.message, stdin)
	if influxClient != nil {
		// Surface batched write errors before the exit status is decided.
		influxClient.Flush()
	}
	log.Debug("forwarding finished", "sent", sent, "failed", failures.Load())
	if err != nil {
		return err
	}
	if n := failures.Load(); n > 0 {
		return fmt.Errorf("%d of %d messages could not be delivered", n, sent)
	}
	return nil
}

// forward logs message, or every non-empty stdin line, at level.
// It stops early when ctx is cancelled.
func forward(ctx context.Context, logger *slog.Logger, level slog.Level, message string, stdin io.Reader) (int, error) {
	if message != "" {
		logger.Log(ctx, level, message)
		return 1, nil
	}

	sent := 0
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		logger.Log(ctx, level, line)
		sent++
	}
	if err := scanner.Err(); err != nil {
		return sent, fmt.Errorf("reading stdin: %w", err)
	}
	return sent, nil
}

// handlerOptions translates the graylog, kafka and mqtt sections into
// handler options.
func handlerOptions(cfg *config.Config, log *logging.Logger, obs transport.Observer, onError func(error, slog.Record)) (handler.Options, error) {
	kind, err := transport.ParseKind(cfg.Graylog.Transport)
	if err != nil {
		return handler.Options{}, err
	}
	compression, err := transport.ParseCompression(cfg.Graylog.UDP.Compression)
	if err != nil {
		return handler.Options{}, err
	}

	opts := handler.Options{
		Host:               cfg.Graylog.Host,
		Port:               cfg.Graylog.Port,
		Transport:          kind,
		Hostname:           cfg.Graylog.Hostname,
		AppName:            cfg.Graylog.AppName,
		InsecureSkipVerify: !cfg.Graylog.Verify,
		CloseOnError:       cfg.Graylog.CloseOnError,
		Level:              logging.ParseLevel(cfg.Graylog.Level),
		HTTPTimeout:        cfg.GetHTTPTimeout(),
		Scheme:             cfg.Graylog.HTTP.Scheme,
		Compression:        compression,
		Kafka: transport.KafkaOptions{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		},
		MQTT:       mqttOptions(cfg),
		LoggerName: "gelfship",
		Logger:     log.With("component", "transport").Logger,
		OnError:    onError,
	}
	if cfg.Graylog.Facility != "" {
		opts.Facility = cfg.Graylog.Facility
	}
	opts.Observer = obs

	// The mqtt section may name its own broker.
	if kind == transport.KindMQTT {
		if cfg.MQTT.Broker.Host != "" {
			opts.Host = cfg.MQTT.Broker.Host
		}
		if cfg.MQTT.Broker.Port != 0 {
			opts.Port = cfg.MQTT.Broker.Port
		}
	}

	return opts, nil
}

func mqttOptions(cfg *config.Config) transport.MQTTOptions {
	qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated to 0..2
	return transport.MQTTOptions{
		TLS:      cfg.MQTT.Broker.TLS,
		ClientID: cfg.MQTT.Broker.ClientID,
		Username: cfg.MQTT.Auth.Username,
		Password: cfg.MQTT.Auth.Password,
		QoS:      &qos,
		Topic:    cfg.MQTT.Topic,
	}
}

// serveMetrics exposes reg on listen at /metrics and returns a stop function.
func serveMetrics(reg *prometheus.Registry, listen string, log *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("serving metrics", "listen", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", "error", err)
		}
	}
}

// getConfigPath returns the configuration file path.
// The --config flag wins, then GRAYLOGGING_CONFIG, then defaultConfigPath if
// that file exists. An empty result means defaults plus environment.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv(config.EnvConfigPath); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}
