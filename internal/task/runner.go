package task

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/vk/hiertask/internal/ctxlog"
	"github.com/vk/hiertask/internal/hierarchy"
	"github.com/vk/hiertask/internal/invoker"
	"github.com/vk/hiertask/internal/ndex"
	"github.com/vk/hiertask/internal/notify"
	"github.com/vk/hiertask/internal/persist"
	"github.com/vk/hiertask/internal/table"
)

// Config is the immutable input of one run.
type Config struct {
	RunID string
	// Input is the edge list handed to the algorithm and, reparsed, used as
	// the leaf feature table.
	Input         string
	AlgorithmPath string
	Alpha         float64
	Beta          float64
	Server        string
	Identity      string
	Secret        string
	Name          string
	Layout        string
	Visibility    string
	// OutputPath, when set, receives the raw algorithm stdout.
	OutputPath string
}

// Invoker runs the external algorithm.
type Invoker interface {
	Run(ctx context.Context, cmd invoker.Command) (*invoker.Output, error)
}

// Publisher hosts a hierarchy remotely.
type Publisher interface {
	Publish(ctx context.Context, h *hierarchy.Hierarchy, req ndex.Request) (string, *ndex.Metadata, error)
}

// Notifier receives every state change.
type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

// Runner wires the collaborators of a run.
type Runner struct {
	Invoker   Invoker
	Publisher Publisher
	// Notifier defaults to notify.Nop.
	Notifier Notifier
	// Persist defaults to persist.Write.
	Persist func(path string, data []byte) error
	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// machine tracks one run's state and emits the transitions.
type machine struct {
	ctx      context.Context
	runID    string
	notifier Notifier
	outcome  Outcome
}

func (m *machine) advance(to State) error {
	from := m.outcome.State
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition %s -> %s", from, to)
	}
	m.outcome.State = to
	ctxlog.FromContext(m.ctx).Debug("Task state changed.", "from", from.String(), "to", to.String())
	m.notifier.Notify(m.ctx, notify.Event{RunID: m.runID, State: to.String()})
	return nil
}

func (m *machine) fail(kind Kind, err error) Outcome {
	stage := m.outcome.State
	taskErr := &Error{Kind: kind, Stage: stage, Err: err}
	m.outcome.Err = taskErr
	m.outcome.URL = ""

	logger := ctxlog.FromContext(m.ctx).With("stage", stage.String(), "kind", kind.String())
	if kind == KindOverflow {
		logger.Error("Numeric overflow during task.", "error", err)
	} else {
		logger.Error("Task failed.", "error", err)
	}

	if !stage.canFail() {
		// Failing outside EXECUTING..PUBLISHING is a programming error.
		taskErr.Kind = KindUnknown
	}
	m.outcome.State = StateFailed
	m.notifier.Notify(m.ctx, notify.Event{RunID: m.runID, State: StateFailed.String(), Message: taskErr.Error()})
	return m.outcome
}

// Run executes one task to completion or failure. It never panics.
func (r *Runner) Run(ctx context.Context, cfg Config) (out Outcome) {
	ctx = ctxlog.With(ctx, "run_id", cfg.RunID)
	logger := ctxlog.FromContext(ctx)

	m := &machine{ctx: ctx, runID: cfg.RunID, notifier: r.notifier()}
	defer func() {
		if v := recover(); v != nil {
			logger.Error("Task panicked.", "panic", v)
			out = Outcome{
				State:    StateFailed,
				Err:      &Error{Kind: KindUnknown, Stage: m.outcome.State, Err: errPanic(v)},
				Warnings: m.outcome.Warnings,
			}
		}
	}()

	// CONFIGURED -> EXECUTING
	if err := m.advance(StateExecuting); err != nil {
		return m.fail(KindUnknown, err)
	}
	cmd := invoker.Command{Path: cfg.AlgorithmPath, Input: cfg.Input, Alpha: cfg.Alpha, Beta: cfg.Beta}
	raw, err := r.Invoker.Run(ctx, cmd)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return m.fail(classify(KindProcessSpawn, err), err)
	}
	m.outcome.ExitCode = raw.ExitCode
	if raw.ExitCode != 0 {
		// Partial output is still parsed.
		logger.Warn("Algorithm exited with a non-zero status.", "exit_code", raw.ExitCode, "stderr", string(raw.Stderr))
	}

	// Raw output is persisted whatever the parse result.
	if cfg.OutputPath != "" {
		if err := r.persist()(cfg.OutputPath, raw.Stdout); err != nil {
			logger.Error("Failed to persist algorithm output.", "path", cfg.OutputPath, "error", err)
			m.outcome.Warnings = append(m.outcome.Warnings, &Error{Kind: KindPersistence, Stage: StateExecuting, Err: err})
		}
	}

	// EXECUTING -> PARSING
	if err := m.advance(StateParsing); err != nil {
		return m.fail(KindUnknown, err)
	}
	structure, err := table.Parse(raw.Stdout)
	if err != nil {
		return m.fail(classify(KindDecode, err), fmt.Errorf("failed to parse algorithm output: %w", err))
	}
	logger.Info("Algorithm output parsed.", "rows", structure.Len())

	// PARSING -> BUILDING
	if err := m.advance(StateBuilding); err != nil {
		return m.fail(KindUnknown, err)
	}
	features, err := r.readFeatures(cfg.Input)
	if err != nil {
		return m.fail(classify(KindBuild, err), err)
	}
	h, err := hierarchy.Build(structure, features, hierarchy.DefaultColumns)
	if err != nil {
		return m.fail(classify(KindBuild, err), err)
	}
	logger.Info("Hierarchy built.", "terms", len(h.Terms()), "genes", len(h.Genes()))

	// BUILDING -> PUBLISHING
	if err := m.advance(StatePublishing); err != nil {
		return m.fail(KindUnknown, err)
	}
	server := NormalizeServer(cfg.Server)
	rawURL, meta, err := r.Publisher.Publish(ctx, h, ndex.Request{
		Name:        cfg.Name,
		Features:    h.Features(),
		MainFeature: table.ColumnHasEdge,
		Server:      server,
		// Identity and secret are handed over crosswise, as the deployed
		// runner does. Suspected defect, kept until confirmed.
		Credentials: ndex.Credentials{Identity: cfg.Secret, Secret: cfg.Identity},
		Layout:      cfg.Layout,
		Visibility:  cfg.Visibility,
	})
	if err != nil {
		return m.fail(classify(KindPublish, err), err)
	}
	viewerURL := ViewerURL(rawURL)
	if viewerURL == "" || strings.ContainsFunc(viewerURL, unicode.IsSpace) {
		return m.fail(KindPublish, fmt.Errorf("server returned an unusable network URL %q", rawURL))
	}

	// PUBLISHING -> DONE
	if err := m.advance(StateDone); err != nil {
		return m.fail(KindUnknown, err)
	}
	m.outcome.URL = viewerURL
	m.outcome.Metadata = meta
	logger.Info("Task finished.", "url", m.outcome.URL)
	return m.outcome
}

// readFeatures parses the input edge list as the leaf feature table.
func (r *Runner) readFeatures(path string) (*table.FeatureTable, error) {
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	t, err := table.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input %s: %w", path, err)
	}
	return table.Features(t), nil
}

func (r *Runner) notifier() Notifier {
	if r.Notifier == nil {
		return notify.Nop{}
	}
	return r.Notifier
}

func (r *Runner) persist() func(string, []byte) error {
	if r.Persist == nil {
		return persist.Write
	}
	return r.Persist
}

// NormalizeServer prefixes http:// unless the address already has an HTTP scheme.
func NormalizeServer(server string) string {
	server = strings.TrimSpace(server)
	lower := strings.ToLower(server)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return server
	}
	return "http://" + server
}

// ViewerURL turns the API URL of a network into its viewer link.
func ViewerURL(apiURL string) string {
	return strings.ReplaceAll(strings.TrimSpace(apiURL), "/v2/network/", "/#/network/")
}
