package retry

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jzx17/httpretry/pkg/types"
)

// Default configuration values
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 500 * time.Millisecond
	DefaultMaxDelay      = 30 * time.Second
	DefaultBackoffFactor = 2.0
)

// Config is the immutable retry configuration shared by every call of an Executor
type Config struct {
	MaxRetries    int           // retries after the first attempt (0 = single attempt)
	InitialDelay  time.Duration // delay before the first retry
	MaxDelay      time.Duration // ceiling for the exponential delay
	BackoffFactor float64       // delay multiplier applied after each retry
	Observer      types.Observer
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries:    DefaultMaxRetries,
		InitialDelay:  DefaultInitialDelay,
		MaxDelay:      DefaultMaxDelay,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// Validate checks a decoded configuration.
// BackoffFactor is deliberately left to the caller.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: retries cannot be negative (%d)", types.ErrInvalidConfig, c.MaxRetries)
	}
	if c.InitialDelay <= 0 {
		return fmt.Errorf("%w: initial_delay must be positive (%v)", types.ErrInvalidConfig, c.InitialDelay)
	}
	if c.MaxDelay <= 0 {
		return fmt.Errorf("%w: max_delay must be positive (%v)", types.ErrInvalidConfig, c.MaxDelay)
	}
	return nil
}

// fileConfig mirrors Config for YAML decoding; nil fields keep their defaults
type fileConfig struct {
	Retries       *int          `yaml:"retries"`
	InitialDelay  *yamlDuration `yaml:"initial_delay"`
	MaxDelay      *yamlDuration `yaml:"max_delay"`
	BackoffFactor *float64      `yaml:"backoff_factor"`
}

// yamlDuration accepts either a Go duration string or integer milliseconds
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got %q", node.Tag)
	}
	if ms, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*d = yamlDuration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = yamlDuration(parsed)
	return nil
}

// ParseConfig decodes a YAML retry configuration on top of DefaultConfig
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}

	if fc.Retries != nil {
		cfg.MaxRetries = *fc.Retries
	}
	if fc.InitialDelay != nil {
		cfg.InitialDelay = time.Duration(*fc.InitialDelay)
	}
	if fc.MaxDelay != nil {
		cfg.MaxDelay = time.Duration(*fc.MaxDelay)
	}
	if fc.BackoffFactor != nil {
		cfg.BackoffFactor = *fc.BackoffFactor
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML retry configuration file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read retry config: %w", err)
	}
	return ParseConfig(data)
}
