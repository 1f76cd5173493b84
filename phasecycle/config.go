package phasecycle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xyhelper/xyphase"
)

// Config holds the cycle timing. Durations are written in YAML as Go
// duration strings such as "4s" or "1ms".
type Config struct {
	// MinCycle and MaxCycle bound the randomized time spent in each phase.
	MinCycle time.Duration `yaml:"min_cycle"`
	MaxCycle time.Duration `yaml:"max_cycle"`
	// PollInterval is how often the publisher checks whether the current
	// cycle has elapsed.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Discipline orders the phase backlog of the shared queue and of every
	// subscription.
	Discipline xyphase.Discipline `yaml:"discipline"`
}

// DefaultConfig returns a 4 to 6 second cycle polled every millisecond,
// delivered in FIFO order.
func DefaultConfig() Config {
	return Config{
		MinCycle:     4 * time.Second,
		MaxCycle:     6 * time.Second,
		PollInterval: time.Millisecond,
		Discipline:   xyphase.FIFO,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MinCycle <= 0:
		return fmt.Errorf("%w: min_cycle must be positive, got %s", ErrInvalidConfig, c.MinCycle)
	case c.MaxCycle < c.MinCycle:
		return fmt.Errorf("%w: max_cycle %s is below min_cycle %s", ErrInvalidConfig, c.MaxCycle, c.MinCycle)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalidConfig, c.PollInterval)
	case c.Discipline != xyphase.FIFO && c.Discipline != xyphase.LIFO:
		return fmt.Errorf("%w: unknown discipline %d", ErrInvalidConfig, int(c.Discipline))
	}
	return nil
}

// ParseConfig reads YAML from r on top of DefaultConfig. Unknown keys are
// rejected. An empty document yields the defaults.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and validates the YAML config file at path.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	cfg, err := ParseConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// MarshalYAML renders the config in the same shape ParseConfig accepts.
func (c Config) MarshalYAML() (any, error) {
	return struct {
		MinCycle     string             `yaml:"min_cycle"`
		MaxCycle     string             `yaml:"max_cycle"`
		PollInterval string             `yaml:"poll_interval"`
		Discipline   xyphase.Discipline `yaml:"discipline"`
	}{
		MinCycle:     c.MinCycle.String(),
		MaxCycle:     c.MaxCycle.String(),
		PollInterval: c.PollInterval.String(),
		Discipline:   c.Discipline,
	}, nil
}
