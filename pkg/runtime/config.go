// Package runtime holds the process-level concerns the core itself
// stays free of (§1 "external collaborators"): configuration loading,
// the process instance id, and the single piece of synchronized
// cross-block state (the satellite delay model, see delay.go).
package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EncoderConfig mirrors gse/encoder.Options at the file level.
type EncoderConfig struct {
	MaxPacketLength  int           `mapstructure:"max_packet_length" yaml:"max_packet_length"`
	PackingThreshold time.Duration `mapstructure:"packing_threshold" yaml:"packing_threshold"`
	MaxReuse         int           `mapstructure:"max_reuse" yaml:"max_reuse"`
}

// SimulationConfig mirrors one entry of the SA simulated-traffic table
// (§4.7): a category label, how many synthetic packets/replicas to
// inject per tick, and what share of real traffic it represents.
type SimulationConfig struct {
	Category   string `mapstructure:"category" yaml:"category"`
	MaxPackets int    `mapstructure:"max_packets" yaml:"max_packets"`
	Replicas   int    `mapstructure:"replicas" yaml:"replicas"`
	Ratio      uint8  `mapstructure:"ratio" yaml:"ratio"`
}

// Config is the top-level process configuration, loaded from YAML via
// viper (§0 Ambient stack).
type Config struct {
	Encoder       EncoderConfig       `mapstructure:"encoder" yaml:"encoder"`
	CatalogFile   string              `mapstructure:"catalog_file" yaml:"catalog_file"`
	DefaultDelay  uint32              `mapstructure:"default_delay_ms" yaml:"default_delay_ms"`
	Simulations   []SimulationConfig  `mapstructure:"simulations" yaml:"simulations"`
	MetricsListen string              `mapstructure:"metrics_listen" yaml:"metrics_listen"`
}

// LoadConfig reads path (YAML) into Config, applying defaults for
// anything unset. onChange, if non-nil, is invoked with the reloaded
// Config whenever the file changes on disk — tuning knobs like the
// packing threshold or simulation ratios are meant to be adjustable
// without a restart, the way the teacher's own SYNC/NMT OD entries take
// effect immediately on a write.
func LoadConfig(path string, onChange func(*Config)) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("runtime: read config %q: %w", path, err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if onChange != nil {
		v.OnConfigChange(func(fsnotify.Event) {
			next, err := decode(v)
			if err != nil {
				return
			}
			onChange(next)
		})
		v.WatchConfig()
	}

	return cfg, nil
}

// DumpYAML renders the effective, defaults-applied config back to YAML,
// for logging what a process actually started with — useful since
// viper silently layers file, env and default values together.
func (c *Config) DumpYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("runtime: marshal effective config: %w", err)
	}
	return out, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("runtime: unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("encoder.max_packet_length", 4096)
	v.SetDefault("encoder.packing_threshold", "0s")
	v.SetDefault("encoder.max_reuse", 0)
	v.SetDefault("default_delay_ms", 0)
	v.SetDefault("metrics_listen", ":9091")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
