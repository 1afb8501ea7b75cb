package app

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Input:         "/data/in.tsv",
		AlgorithmPath: "/opt/clixo/clixo",
		Visibility:    "PUBLIC",
	}
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.Input = "" }, wantErr: "input file is required"},
		{name: "missing executable", mutate: func(c *Config) { c.AlgorithmPath = "" }, wantErr: "executable path is required"},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: "timeout must not be negative"},
		{name: "bad visibility", mutate: func(c *Config) { c.Visibility = "friends" }, wantErr: `invalid visibility "friends"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			got, err := NewConfig(cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestNewConfig_NormalisesVisibility(t *testing.T) {
	cfg := validConfig()
	cfg.Visibility = " private "
	got, err := NewConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "PRIVATE", got.Visibility)
}

func TestConfig_TaskConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Identity, cfg.Secret = "id", "secret"
	cfg.OutputPath = "/data/out"
	got := cfg.TaskConfig("run-7")
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, "id", got.Identity)
	assert.Equal(t, "secret", got.Secret)
	assert.Equal(t, "/data/out", got.OutputPath)
}

func TestConfig_LogValueHidesCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Identity, cfg.Secret = "alice", "hunter2"
	var b strings.Builder
	slog.New(slog.NewTextHandler(&b, nil)).Info("cfg", "config", &cfg)
	assert.NotContains(t, b.String(), "alice")
	assert.NotContains(t, b.String(), "hunter2")
	assert.Contains(t, b.String(), "config.input=/data/in.tsv")
}
