package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hiertask/internal/app"
)

func writeTaskFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"/data/in.tsv"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	want := &app.Config{
		Input:         "/data/in.tsv",
		AlgorithmPath: DefaultClixoPath,
		Alpha:         0.05,
		Beta:          0.5,
		Server:        "test.ndexbio.org",
		Identity:      "ddot_anon",
		Secret:        "ddot_anon",
		Name:          "DDOTontology",
		Layout:        "bubble-collect",
		Visibility:    "PUBLIC",
		LogFormat:     "json",
		LogLevel:      "info",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Flags(t *testing.T) {
	args := []string{
		"--ndexserver", "foo.bar",
		"--ndexuser", "alice",
		"--ndexpass", "hunter2",
		"--ndexname", "Mine",
		"--ndexlayout", "force",
		"--ndexvisibility", "private",
		"--alpha", "0.1",
		"--beta=0.75",
		"--clixopath", "/usr/local/bin/clixo",
		"--output", "/tmp/out.tsv",
		"--notify", "http://queue:3000",
		"--timeout", "90s",
		"--log-format", "TEXT",
		"--log-level", "debug",
		"input with spaces.tsv",
	}
	cfg, _, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "input with spaces.tsv", cfg.Input)
	assert.Equal(t, "foo.bar", cfg.Server)
	assert.Equal(t, "alice", cfg.Identity)
	assert.Equal(t, "hunter2", cfg.Secret)
	assert.Equal(t, "PRIVATE", cfg.Visibility)
	assert.Equal(t, 0.1, cfg.Alpha)
	assert.Equal(t, 0.75, cfg.Beta)
	assert.Equal(t, "/usr/local/bin/clixo", cfg.AlgorithmPath)
	assert.Equal(t, "/tmp/out.tsv", cfg.OutputPath)
	assert.Equal(t, "http://queue:3000", cfg.NotifyURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_TaskFilePrecedence(t *testing.T) {
	t.Setenv("HIERTASK_TEST_SECRET", "from-env")
	path := writeTaskFile(t, `
algorithm "clixo" {
  path  = "/from/file/clixo"
  alpha = 0.2
}

ndex {
  server = "file.example"
  secret = env.HIERTASK_TEST_SECRET
  name   = "From file"
}

output  = "/from/file/out"
timeout = "2m"
`)

	cfg, _, err := Parse([]string{"--config", path, "--ndexname", "From flag", "--alpha", "0.3", "in.tsv"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "/from/file/clixo", cfg.AlgorithmPath, "file beats default")
	assert.Equal(t, 0.3, cfg.Alpha, "flag beats file")
	assert.Equal(t, 0.5, cfg.Beta, "default survives when neither sets it")
	assert.Equal(t, "file.example", cfg.Server)
	assert.Equal(t, "from-env", cfg.Secret)
	assert.Equal(t, "ddot_anon", cfg.Identity)
	assert.Equal(t, "From flag", cfg.Name)
	assert.Equal(t, "/from/file/out", cfg.OutputPath)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestParse_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"--help"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "--ndexserver")
}

func TestParse_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"--this-is-not-a-valid-flag", "in.tsv"}, wantErr: "unknown flag: --this-is-not-a-valid-flag"},
		{name: "missing input", args: []string{}, wantErr: "accepts 1 arg(s), received 0"},
		{name: "too many inputs", args: []string{"a", "b"}, wantErr: "accepts 1 arg(s), received 2"},
		{name: "bad float", args: []string{"--alpha", "much", "in.tsv"}, wantErr: "invalid argument"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, shouldExit)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}

func TestParse_ConfigErrors(t *testing.T) {
	badFile := writeTaskFile(t, `algorithm "louvain" {}`)
	badTimeout := writeTaskFile(t, `timeout = "soon"`)
	noMethod := writeTaskFile(t, "alpha\t0.1\n")

	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad visibility", args: []string{"--ndexvisibility", "secret", "in.tsv"}, wantErr: "invalid visibility"},
		{name: "bad log format", args: []string{"--log-format", "xml", "in.tsv"}, wantErr: "invalid log-format"},
		{name: "bad log level", args: []string{"--log-level", "loud", "in.tsv"}, wantErr: "invalid log-level"},
		{name: "negative timeout", args: []string{"--timeout", "-1s", "in.tsv"}, wantErr: "timeout must not be negative"},
		{name: "empty executable", args: []string{"--clixopath", "", "in.tsv"}, wantErr: "executable path is required"},
		{name: "unsupported method", args: []string{"--config", badFile, "in.tsv"}, wantErr: "unsupported algorithm method"},
		{name: "bad file timeout", args: []string{"--config", badTimeout, "in.tsv"}, wantErr: "invalid timeout"},
		{name: "key/value without method", args: []string{"--config", noMethod, "in.tsv"}, wantErr: "Method not specified"},
		{name: "missing task file", args: []string{"--config", "/does/not/exist.hcl", "in.tsv"}, wantErr: "failed to read task file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, shouldExit)
			assert.Nil(t, cfg)

			var exitErr *ExitError
			assert.False(t, errors.As(err, &exitErr), "configuration errors must not carry an exit code")

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, cfgErr.Error(), tc.wantErr)
		})
	}
}

func TestParse_KeyValueTaskFile(t *testing.T) {
	path := writeTaskFile(t, "Method\tclixo1.0b\nalpha\t0.2\nclixopath /from/file/clixo\n")

	cfg, _, err := Parse([]string{"--config", path, "--beta", "0.7", "in.tsv"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "/from/file/clixo", cfg.AlgorithmPath)
	assert.Equal(t, 0.2, cfg.Alpha)
	assert.Equal(t, 0.7, cfg.Beta)
	assert.Equal(t, DefaultServer, cfg.Server)
}
