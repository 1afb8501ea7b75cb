package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/hiertask/internal/ndex"
	"github.com/vk/hiertask/internal/task"
)

// Config holds everything one task invocation needs. It is built once and
// never mutated.
type Config struct {
	Input         string
	AlgorithmPath string
	Alpha         float64
	Beta          float64

	Server     string
	Identity   string
	Secret     string
	Name       string
	Layout     string
	Visibility string

	OutputPath string
	NotifyURL  string
	// Timeout bounds the whole task. Zero means no bound.
	Timeout time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a normalised copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Input == "" {
		return nil, errors.New("input file is required")
	}
	if cfg.AlgorithmPath == "" {
		return nil, errors.New("algorithm executable path is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}

	visibility := strings.ToUpper(strings.TrimSpace(cfg.Visibility))
	switch visibility {
	case ndex.VisibilityPublic, ndex.VisibilityPrivate:
		cfg.Visibility = visibility
	default:
		return nil, fmt.Errorf("invalid visibility %q: must be %s or %s", cfg.Visibility, ndex.VisibilityPublic, ndex.VisibilityPrivate)
	}

	return &cfg, nil
}

// TaskConfig projects the configuration onto one orchestrator run.
func (c *Config) TaskConfig(runID string) task.Config {
	return task.Config{
		RunID:         runID,
		Input:         c.Input,
		AlgorithmPath: c.AlgorithmPath,
		Alpha:         c.Alpha,
		Beta:          c.Beta,
		Server:        c.Server,
		Identity:      c.Identity,
		Secret:        c.Secret,
		Name:          c.Name,
		Layout:        c.Layout,
		Visibility:    c.Visibility,
		OutputPath:    c.OutputPath,
	}
}

// LogValue keeps credentials out of log records.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("input", c.Input),
		slog.String("algorithm", c.AlgorithmPath),
		slog.Float64("alpha", c.Alpha),
		slog.Float64("beta", c.Beta),
		slog.String("server", c.Server),
		slog.String("name", c.Name),
		slog.String("layout", c.Layout),
		slog.String("visibility", c.Visibility),
		slog.String("output", c.OutputPath),
		slog.String("notify", c.NotifyURL),
		slog.Duration("timeout", c.Timeout),
	)
}
