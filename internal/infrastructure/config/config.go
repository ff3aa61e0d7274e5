package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/graylogging/gelf"
	"github.com/nerrad567/graylogging/transport"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "GRAYLOGGING_CONFIG"

// Config is the root configuration structure for gelfship.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Graylog GraylogConfig `yaml:"graylog"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// GraylogConfig describes the GELF destination and how records are shaped.
type GraylogConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"` // 0 selects the transport's default port
	Transport    string `yaml:"transport"`
	Facility     string `yaml:"facility"`
	Hostname     string `yaml:"hostname"`
	AppName      string `yaml:"appname"`
	Verify       bool   `yaml:"verify"`
	CloseOnError bool   `yaml:"close_on_error"`
	Level        string `yaml:"level"`

	HTTP GraylogHTTPConfig `yaml:"http"`
	UDP  GraylogUDPConfig  `yaml:"udp"`
}

// GraylogHTTPConfig contains settings for the http transport.
type GraylogHTTPConfig struct {
	Scheme  string `yaml:"scheme"`
	Timeout int    `yaml:"timeout"` // seconds
}

// GraylogUDPConfig contains settings for the udp transport.
type GraylogUDPConfig struct {
	Compression string `yaml:"compression"`
}

// KafkaConfig contains settings for the kafka transport.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// MQTTConfig contains MQTT broker connection settings for the mqtt transport.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`
	Topic  string           `yaml:"topic"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
// Host and Port fall back to graylog.host and graylog.port when empty.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains settings for gelfship's own log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig contains delivery metrics settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
}

// PrometheusConfig controls the /metrics endpoint.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Load reads configuration from a YAML file, applies environment variable
// overrides, and validates the result.
//
// An empty path skips the file and uses defaults plus environment overrides.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Graylog: GraylogConfig{
			Host:      "localhost",
			Transport: "tcp",
			Facility:  "user",
			Verify:    true,
			Level:     "info",
			HTTP: GraylogHTTPConfig{
				Scheme:  "https",
				Timeout: 10,
			},
			UDP: GraylogUDPConfig{
				Compression: "none",
			},
		},
		Kafka: KafkaConfig{
			Topic: "gelf",
		},
		MQTT: MQTTConfig{
			QoS:   1,
			Topic: "graylog/gelf",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Prometheus: PrometheusConfig{
				Listen: ":9464",
			},
			InfluxDB: InfluxDBConfig{
				URL:           "http://localhost:8086",
				Org:           "graylogging",
				Bucket:        "delivery",
				BatchSize:     100,
				FlushInterval: 10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGGING_KEY
func applyEnvOverrides(cfg *Config) {
	// Graylog
	if v := os.Getenv("GRAYLOGGING_HOST"); v != "" {
		cfg.Graylog.Host = v
	}
	if v := os.Getenv("GRAYLOGGING_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Graylog.Port = port
		} else {
			cfg.Graylog.Port = -1 // rejected by Validate
		}
	}
	if v := os.Getenv("GRAYLOGGING_TRANSPORT"); v != "" {
		cfg.Graylog.Transport = v
	}
	if v := os.Getenv("GRAYLOGGING_APPNAME"); v != "" {
		cfg.Graylog.AppName = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGGING_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGGING_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYLOGGING_INFLUXDB_TOKEN"); v != "" {
		cfg.Metrics.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Every problem is collected so one run reports them all.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Graylog validation
	if c.Graylog.Host == "" {
		errs = append(errs, "graylog.host is required")
	}
	if c.Graylog.Port < 0 || c.Graylog.Port > 65535 {
		errs = append(errs, "graylog.port must be between 0 and 65535")
	}
	if _, err := transport.ParseKind(c.Graylog.Transport); err != nil {
		errs = append(errs, fmt.Sprintf("graylog.transport: %v", err))
	}
	if c.Graylog.Facility != "" {
		if _, err := gelf.ParseFacility(c.Graylog.Facility); err != nil {
			errs = append(errs, fmt.Sprintf("graylog.facility: %v", err))
		}
	}
	if _, err := transport.ParseCompression(c.Graylog.UDP.Compression); err != nil {
		errs = append(errs, fmt.Sprintf("graylog.udp.compression: %v", err))
	}
	switch strings.ToLower(c.Graylog.HTTP.Scheme) {
	case "", "http", "https":
	default:
		errs = append(errs, "graylog.http.scheme must be http or https")
	}
	if c.Graylog.HTTP.Timeout < 0 {
		errs = append(errs, "graylog.http.timeout must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Metrics validation
	if c.Metrics.Prometheus.Enabled && c.Metrics.Prometheus.Listen == "" {
		errs = append(errs, "metrics.prometheus.listen is required when enabled")
	}
	if c.Metrics.InfluxDB.Enabled && c.Metrics.InfluxDB.URL == "" {
		errs = append(errs, "metrics.influxdb.url is required when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHTTPTimeout returns the http transport timeout as a Duration.
func (c *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(c.Graylog.HTTP.Timeout) * time.Second
}
