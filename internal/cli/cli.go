package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vk/hiertask/internal/app"
	"github.com/vk/hiertask/internal/config"
)

// Defaults for every flag. They match the deployed task runner.
const (
	DefaultServer     = "test.ndexbio.org"
	DefaultIdentity   = "ddot_anon"
	DefaultSecret     = "ddot_anon"
	DefaultName       = "DDOTontology"
	DefaultLayout     = "bubble-collect"
	DefaultVisibility = "PUBLIC"
	DefaultAlpha      = 0.05
	DefaultBeta       = 0.5
	DefaultClixoPath  = "/opt/clixo/clixo"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ConfigError reports a task that was named on the command line but could
// not be configured. It is not an argument syntax error: the caller still
// owes a result token on stdout.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type flags struct {
	server, identity, secret string
	name, layout, visibility string
	alpha, beta              float64
	clixoPath                string
	output                   string
	configPath               string
	notifyURL                string
	timeout                  time.Duration
	logFormat, logLevel      string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an error:
// an ExitError for malformed arguments, a ConfigError once INPUT is known.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f   flags
		cfg *app.Config
	)
	cmd := &cobra.Command{
		Use:   "hiertask [flags] INPUT",
		Short: "Run CliXO on an edge list and publish the hierarchy to NDEx.",
		Long: `hiertask runs the CliXO clustering executable on INPUT, builds the
resulting term/gene hierarchy, publishes it to an NDEx server and prints one
line on stdout: RESULT:<url> on success or ERROR:<message> on failure.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			var err error
			cfg, err = resolve(cmd.Flags(), &f, positional[0])
			return err
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.StringVar(&f.server, "ndexserver", DefaultServer, "NDEx server, http:// is added when no scheme is given.")
	fs.StringVar(&f.identity, "ndexuser", DefaultIdentity, "NDEx account identity.")
	fs.StringVar(&f.secret, "ndexpass", DefaultSecret, "NDEx account secret.")
	fs.StringVar(&f.name, "ndexname", DefaultName, "Name of the published network.")
	fs.StringVar(&f.layout, "ndexlayout", DefaultLayout, "Layout hint stored on the network.")
	fs.StringVar(&f.visibility, "ndexvisibility", DefaultVisibility, "Network visibility: PUBLIC or PRIVATE.")
	fs.Float64Var(&f.alpha, "alpha", DefaultAlpha, "CliXO alpha parameter.")
	fs.Float64Var(&f.beta, "beta", DefaultBeta, "CliXO beta parameter.")
	fs.StringVar(&f.clixoPath, "clixopath", DefaultClixoPath, "Path to the CliXO executable.")
	fs.StringVar(&f.output, "output", "", "If set, write the raw CliXO output to this file.")
	fs.StringVar(&f.configPath, "config", "", "Task file (HCL or key/value lines). Flags given on the command line take precedence.")
	fs.StringVar(&f.notifyURL, "notify", "", "socket.io endpoint that receives progress events.")
	fs.DurationVar(&f.timeout, "timeout", 0, "Upper bound for the whole task. 0 disables it.")
	fs.StringVar(&f.logFormat, "log-format", "json", "Log output format. Options: 'text' or 'json'.")
	fs.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := cmd.Execute(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, false, cfgErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg == nil {
		// Help was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// resolve layers the task file between the defaults and the flags the user
// explicitly set.
func resolve(fs *pflag.FlagSet, f *flags, input string) (*app.Config, error) {
	if f.configPath != "" {
		file, err := config.Load(context.Background(), f.configPath, os.Environ())
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if err := applyFile(fs, f, file); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, &ConfigError{Err: errors.New("invalid log-format: must be 'text' or 'json'")}
	}

	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ConfigError{Err: errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		Input:         input,
		AlgorithmPath: f.clixoPath,
		Alpha:         f.alpha,
		Beta:          f.beta,
		Server:        f.server,
		Identity:      f.identity,
		Secret:        f.secret,
		Name:          f.name,
		Layout:        f.layout,
		Visibility:    f.visibility,
		OutputPath:    f.output,
		NotifyURL:     f.notifyURL,
		Timeout:       f.timeout,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

// applyFile copies every attribute set in the task file onto f, unless the
// matching flag was given on the command line.
func applyFile(fs *pflag.FlagSet, f *flags, file *config.File) error {
	setString := func(name string, dst *string, v *string) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}
	setFloat := func(name string, dst *float64, v *float64) {
		if v != nil && !fs.Changed(name) {
			*dst = *v
		}
	}

	if a := file.Algorithm; a != nil {
		setString("clixopath", &f.clixoPath, a.Path)
		setFloat("alpha", &f.alpha, a.Alpha)
		setFloat("beta", &f.beta, a.Beta)
	}
	if n := file.NDEx; n != nil {
		setString("ndexserver", &f.server, n.Server)
		setString("ndexuser", &f.identity, n.Identity)
		setString("ndexpass", &f.secret, n.Secret)
		setString("ndexname", &f.name, n.Name)
		setString("ndexlayout", &f.layout, n.Layout)
		setString("ndexvisibility", &f.visibility, n.Visibility)
	}
	setString("output", &f.output, file.Output)
	setString("notify", &f.notifyURL, file.Notify)

	if file.Timeout != nil && !fs.Changed("timeout") {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return fmt.Errorf("task file %s: invalid timeout: %w", f.configPath, err)
		}
		f.timeout = d
	}
	return nil
}
