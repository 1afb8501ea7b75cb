package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/vk/hiertask/internal/ctxlog"
	"github.com/vk/hiertask/internal/invoker"
	"github.com/vk/hiertask/internal/ndex"
	"github.com/vk/hiertask/internal/notify"
	"github.com/vk/hiertask/internal/persist"
	"github.com/vk/hiertask/internal/task"
)

const unknownErrorToken = "ERROR:unknown error\n"

// App runs one task and reports it on its output writer.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	runID  string
	runner *task.Runner

	// dial connects the progress notifier; replaced in tests.
	dial    func(ctx context.Context, url string) (notifier, error)
	closers []io.Closer
}

type notifier interface {
	task.Notifier
	io.Closer
}

// NewApp wires the real collaborators. The result token goes to outW, every
// diagnostic to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	publisher := ndex.NewClient(cfg.Timeout)

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		runID:  uuid.NewString(),
		runner: &task.Runner{
			Invoker:   invoker.Exec{},
			Publisher: publisher,
			Persist:   persist.Write,
			ReadFile:  os.ReadFile,
		},
		dial: func(ctx context.Context, url string) (notifier, error) {
			return notify.Dial(ctx, url, notify.DefaultConnectTimeout)
		},
		closers: []io.Closer{publisher},
	}
}

// RunID identifies this invocation in logs and progress events.
func (a *App) RunID() string {
	return a.runID
}

// Run executes the task and writes exactly one result line. It never panics.
func (a *App) Run(ctx context.Context) task.Outcome {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("run_id", a.runID)
	logger.Info("Task configured.", "config", a.config)
	defer a.close(logger)

	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	if a.config.NotifyURL != "" && a.runner.Notifier == nil {
		a.runner.Notifier = a.connectNotifier(ctx, logger)
	}

	out := a.runTask(ctx, logger)
	a.writeResult(out, logger)
	return out
}

// runTask contains panics raised outside the orchestrator's own recovery.
func (a *App) runTask(ctx context.Context, logger *slog.Logger) (out task.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task runner panicked.", "panic", r)
			out = task.Outcome{State: task.StateFailed}
		}
	}()
	return a.runner.Run(ctx, a.config.TaskConfig(a.runID))
}

func (a *App) connectNotifier(ctx context.Context, logger *slog.Logger) task.Notifier {
	n, err := a.dial(ctx, a.config.NotifyURL)
	if err != nil {
		logger.Warn("Progress notifier unavailable, continuing without it.", "url", a.config.NotifyURL, "error", err)
		return notify.Nop{}
	}
	a.closers = append(a.closers, n)
	logger.Debug("Progress notifier connected.", "url", a.config.NotifyURL)
	return n
}

// writeResult writes the token in one flush. If encoding or writing panics
// before anything reached outW, the unknown-error token is written instead.
// Reject reports a task that could not be configured. It writes the ERROR
// token to outW just like a failed run would.
func Reject(outW io.Writer, err error) task.Outcome {
	out := task.Rejected(err)
	logger := slog.Default()
	logger.Error("Task configuration rejected.", "error", err)
	(&App{outW: outW}).writeResult(out, logger)
	return out
}

func (a *App) writeResult(out task.Outcome, logger *slog.Logger) {
	flushed := false
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Writing the result token panicked.", "panic", r)
			if !flushed {
				_, _ = io.WriteString(a.outW, unknownErrorToken)
			}
		}
	}()

	w := bufio.NewWriter(a.outW)
	if _, err := out.WriteTo(w); err != nil {
		logger.Error("Failed to encode the result token.", "error", err)
		return
	}
	flushed = true
	if err := w.Flush(); err != nil {
		logger.Error("Failed to write the result token.", "error", err)
	}
}

func (a *App) close(logger *slog.Logger) {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Debug("Failed to release a collaborator.", "error", err)
		}
	}
}
