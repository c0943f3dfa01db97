// Package config loads service settings from defaults, an optional TOML file
// and SENTINEL_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/correlator"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTP    HTTPConfig
	Store   StoreConfig
	Monitor MonitorConfig
	Reader  ReaderConfig
	Legacy  LegacyConfig
}

type HTTPConfig struct {
	Port        int
	CORSOrigins []string `mapstructure:"cors_origins"`
	// H2C serves HTTP/2 without TLS next to HTTP/1.1.
	H2C bool `mapstructure:"h2c"`
}

type StoreConfig struct {
	Driver      string
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

type MonitorConfig struct {
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	PublishInterval   time.Duration `mapstructure:"publish_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	CorrelationWindow time.Duration `mapstructure:"correlation_window"`
	AdjacentWindow    time.Duration `mapstructure:"adjacent_window"`
	Adjacency         string
	// Autostart starts every stored zone at boot.
	Autostart       bool
	SubscriberQueue int `mapstructure:"subscriber_queue"`
}

type ReaderConfig struct {
	BackoffBase  time.Duration `mapstructure:"backoff_base"`
	BackoffCap   time.Duration `mapstructure:"backoff_cap"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
}

// LegacyConfig seeds the implicit zone behind /start, /stop and /config.
type LegacyConfig struct {
	ReaderIP   string `mapstructure:"reader_ip"`
	ReaderPort int    `mapstructure:"reader_port"`
	Timeout    time.Duration
	Simulation bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8000)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.h2c", false)

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "rfid.db")
	v.SetDefault("store.postgres_url", "")

	v.SetDefault("monitor.sweep_interval", time.Second)
	v.SetDefault("monitor.publish_interval", 250*time.Millisecond)
	v.SetDefault("monitor.heartbeat_interval", 2*time.Second)
	v.SetDefault("monitor.correlation_window", correlator.DefaultWindow)
	v.SetDefault("monitor.adjacent_window", correlator.DefaultAdjacentWindow)
	v.SetDefault("monitor.adjacency", string(correlator.AdjacencyAdvisory))
	v.SetDefault("monitor.autostart", false)
	v.SetDefault("monitor.subscriber_queue", 8)

	v.SetDefault("reader.backoff_base", time.Second)
	v.SetDefault("reader.backoff_cap", 30*time.Second)
	v.SetDefault("reader.poll_interval", 400*time.Millisecond)
	v.SetDefault("reader.dial_timeout", 2*time.Second)

	v.SetDefault("legacy.reader_ip", "192.168.29.201")
	v.SetDefault("legacy.reader_port", 2189)
	v.SetDefault("legacy.timeout", 8*time.Second)
	v.SetDefault("legacy.simulation", false)
}

// Load reads configuration. SENTINEL_CONFIG names the file explicitly;
// otherwise sentinel.toml is looked up in the working directory and a
// missing file is not an error.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path := os.Getenv("SENTINEL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sentinel")
	}

	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.HTTP.CORSOrigins = splitOrigins(c.HTTP.CORSOrigins)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// splitOrigins flattens comma separated entries, as env values arrive whole.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("config: store.postgres_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: http.port %d out of range", c.HTTP.Port)
	}
	if _, err := correlator.ParseAdjacency(c.Monitor.Adjacency); err != nil {
		return fmt.Errorf("config: monitor.adjacency: %w", err)
	}
	if c.Monitor.CorrelationWindow <= 0 || c.Monitor.AdjacentWindow <= 0 {
		return errors.New("config: correlation windows must be positive")
	}
	if c.Monitor.SweepInterval <= 0 {
		return errors.New("config: monitor.sweep_interval must be positive")
	}
	if c.Reader.BackoffBase <= 0 || c.Reader.BackoffCap < c.Reader.BackoffBase {
		return errors.New("config: reader backoff needs 0 < backoff_base <= backoff_cap")
	}
	return nil
}

// Policy returns the correlation policy. Validate has already checked the
// adjacency mode.
func (c Config) Policy() correlator.Policy {
	adj, _ := correlator.ParseAdjacency(c.Monitor.Adjacency)
	return correlator.Policy{
		Window:         c.Monitor.CorrelationWindow,
		AdjacentWindow: c.Monitor.AdjacentWindow,
		Adjacency:      adj,
	}
}
