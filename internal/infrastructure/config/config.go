package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Canopy Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Store    StoreConfig    `yaml:"store"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Control  ControlConfig  `yaml:"control"`
}

// SiteConfig contains deployment-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// StoreConfig contains settings for the SQLite-backed hierarchical store.
type StoreConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// OpTimeout bounds every individual store call, in seconds.
	// A call exceeding it is reported as a transient store failure.
	OpTimeout int `yaml:"op_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains settings for the optional telemetry mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ControlConfig contains control-loop scheduling and per-user bindings.
type ControlConfig struct {
	// Interval is the fixed cadence between scheduled cycles, in seconds.
	Interval int `yaml:"interval"`

	// CycleTimeout bounds a single control cycle, in seconds.
	CycleTimeout int `yaml:"cycle_timeout"`

	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`

	// Users binds each account to the station it monitors and the
	// actuators its thresholds drive.
	Users []UserBinding `yaml:"users"`
}

// RetryConfig contains backoff settings for transient store failures.
type RetryConfig struct {
	// InitialDelay is the first backoff interval, in seconds.
	InitialDelay int `yaml:"initial_delay"`

	// MaxElapsed is the total time spent retrying one cycle, in seconds.
	MaxElapsed int `yaml:"max_elapsed"`
}

// BreakerConfig contains circuit breaker settings for the scheduler.
type BreakerConfig struct {
	// Failures is the consecutive failure count that trips the breaker.
	Failures int `yaml:"failures"`

	// OpenFor is how long the breaker stays open, in seconds.
	OpenFor int `yaml:"open_for"`
}

// UserBinding binds a user account to a telemetry station and declares
// which actuators the user's thresholds drive.
type UserBinding struct {
	UserID    string           `yaml:"user_id"`
	StationID string           `yaml:"station_id"`
	Mappings  []ActuatorBinding `yaml:"mappings"`
}

// ActuatorBinding maps a monitored quantity to an actuator pin with a polarity.
type ActuatorBinding struct {
	// Quantity is the monitored quantity: temperature, humidity, light, moisture.
	Quantity string `yaml:"quantity"`

	// ActuatorID is the pin the actuator is wired to (small positive integer).
	ActuatorID int `yaml:"actuator_id"`

	// Polarity selects the target state when the max bound is crossed:
	// "above_max_on" (default) or "above_max_off". Crossing min drives
	// the opposite state.
	Polarity string `yaml:"polarity"`
}

// Load reads configuration from a YAML file with environment overrides.
//
// Precedence (lowest to highest): built-in defaults, YAML file, CANOPY_*
// environment variables. For example: CANOPY_STORE_PATH, CANOPY_MQTT_HOST.
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

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
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
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Canopy",
			Timezone: "UTC",
		},
		Store: StoreConfig{
			Path:        "./data/canopy.db",
			WALMode:     true,
			BusyTimeout: 5,
			OpTimeout:   10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "canopy-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Control: ControlConfig{
			Interval:     60,
			CycleTimeout: 30,
			Retry: RetryConfig{
				InitialDelay: 1,
				MaxElapsed:   20,
			},
			Breaker: BreakerConfig{
				Failures: 5,
				OpenFor:  30,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CANOPY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Store
	if v := os.Getenv("CANOPY_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}

	// MQTT
	if v := os.Getenv("CANOPY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CANOPY_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("CANOPY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CANOPY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("CANOPY_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("CANOPY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("CANOPY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// validQuantities are the monitored quantities a mapping may reference.
var validQuantities = map[string]struct{}{
	"temperature": {},
	"humidity":    {},
	"light":       {},
	"moisture":    {},
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Store validation
	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}
	if c.Store.OpTimeout <= 0 {
		errs = append(errs, "store.op_timeout must be positive")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Control validation
	if c.Control.Interval <= 0 {
		errs = append(errs, "control.interval must be positive")
	}
	if c.Control.CycleTimeout <= 0 {
		errs = append(errs, "control.cycle_timeout must be positive")
	}
	for i, u := range c.Control.Users {
		if u.UserID == "" {
			errs = append(errs, fmt.Sprintf("control.users[%d].user_id is required", i))
		}
		if u.StationID == "" {
			errs = append(errs, fmt.Sprintf("control.users[%d].station_id is required", i))
		}
		for j, m := range u.Mappings {
			if _, ok := validQuantities[m.Quantity]; !ok {
				errs = append(errs, fmt.Sprintf("control.users[%d].mappings[%d].quantity %q is not a monitored quantity", i, j, m.Quantity))
			}
			if m.ActuatorID <= 0 {
				errs = append(errs, fmt.Sprintf("control.users[%d].mappings[%d].actuator_id must be a positive pin number", i, j))
			}
			if m.Polarity != "" && m.Polarity != "above_max_on" && m.Polarity != "above_max_off" {
				errs = append(errs, fmt.Sprintf("control.users[%d].mappings[%d].polarity must be above_max_on or above_max_off", i, j))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// StoreOpTimeout returns the per-call store timeout as a Duration.
func (c *Config) StoreOpTimeout() time.Duration {
	return time.Duration(c.Store.OpTimeout) * time.Second
}
