// Package config loads spynet settings from defaults, an optional YAML file
// and SPYNET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/reconciler"
	"github.com/Rival420/Spynet2/internal/selection"
)

// EnvPrefix prefixes every environment override, e.g. SPYNET_ENGINE_URL.
const EnvPrefix = "SPYNET"

// DashboardLogFile is where the dashboard logs when logging.output is unset.
const DashboardLogFile = "spynet.log"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the client and the fake engine.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Push      PushConfig      `mapstructure:"push"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Panel     PanelConfig     `mapstructure:"panel"`
	Logging   logger.Config   `mapstructure:"logging"`
	Faker     FakerConfig     `mapstructure:"faker"`
}

// EngineConfig locates the scanning engine.
type EngineConfig struct {
	URL            string        `mapstructure:"url"`
	PushURL        string        `mapstructure:"push_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PushConfig tunes the push channel listener.
type PushConfig struct {
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
}

// CommandsConfig holds the timeout handed to the engine with each command.
type CommandsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScannerConfig pre-fills the scanner start form.
type ScannerConfig struct {
	Network   string        `mapstructure:"network"`
	PortStart int           `mapstructure:"port_start"`
	PortEnd   int           `mapstructure:"port_end"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Interval  time.Duration `mapstructure:"interval"`
}

// ReconcileConfig selects the missing-host policy.
type ReconcileConfig struct {
	EvictAfterMisses int `mapstructure:"evict_after_misses"`
}

// PanelConfig is the action panel spacing, in terminal cells.
type PanelConfig struct {
	Padding int `mapstructure:"padding"`
	Gap     int `mapstructure:"gap"`
}

// FakerConfig configures spynet-faker.
type FakerConfig struct {
	Listen            string        `mapstructure:"listen"`
	Hosts             int           `mapstructure:"hosts"`
	Network           string        `mapstructure:"network"`
	AckPortScans      bool          `mapstructure:"ack_port_scans"`
	ScanDelay         time.Duration `mapstructure:"scan_delay"`
	BroadcastInterval time.Duration `mapstructure:"broadcast_interval"`
}

// Load reads configuration. An explicit path must exist; otherwise
// spynet.yaml is looked up in the usual places and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("spynet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/spynet")
		v.AddConfigPath("/etc/spynet/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.url", "http://127.0.0.1:5000")
	v.SetDefault("engine.push_url", "ws://127.0.0.1:5000/ws")
	v.SetDefault("engine.request_timeout", time.Duration(0))

	v.SetDefault("push.reconnect_interval", 2*time.Second)

	v.SetDefault("commands.timeout", 2*time.Second)

	v.SetDefault("scanner.network", "")
	v.SetDefault("scanner.port_start", 1)
	v.SetDefault("scanner.port_end", 1024)
	v.SetDefault("scanner.timeout", 2*time.Second)
	v.SetDefault("scanner.interval", 60*time.Second)

	v.SetDefault("reconcile.evict_after_misses", 0)

	v.SetDefault("panel.padding", 1)
	v.SetDefault("panel.gap", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.output", "")
	v.SetDefault("logging.time_format", "")

	v.SetDefault("faker.listen", ":5000")
	v.SetDefault("faker.hosts", 16)
	v.SetDefault("faker.network", "192.168.1.0/24")
	v.SetDefault("faker.ack_port_scans", false)
	v.SetDefault("faker.scan_delay", 500*time.Millisecond)
	v.SetDefault("faker.broadcast_interval", time.Second)
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	switch {
	case c.Engine.URL == "":
		return fmt.Errorf("%w: engine.url is empty", ErrInvalidConfig)
	case c.Engine.PushURL == "":
		return fmt.Errorf("%w: engine.push_url is empty", ErrInvalidConfig)
	case c.Commands.Timeout <= 0:
		return fmt.Errorf("%w: commands.timeout must be positive", ErrInvalidConfig)
	case c.Reconcile.EvictAfterMisses < 0:
		return fmt.Errorf("%w: reconcile.evict_after_misses must not be negative", ErrInvalidConfig)
	case c.Panel.Padding < 0 || c.Panel.Gap < 0:
		return fmt.Errorf("%w: panel spacing must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Layout is the panel spacing as the selection controller wants it.
func (c *Config) Layout() selection.Layout {
	return selection.Layout{Padding: c.Panel.Padding, Gap: c.Panel.Gap}
}

// Policy is the configured missing-host policy.
func (c *Config) Policy() reconciler.Policy {
	return reconciler.Policy{EvictAfterMisses: c.Reconcile.EvictAfterMisses}
}
