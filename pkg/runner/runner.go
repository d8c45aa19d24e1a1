package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/synthaser/pkg/expr"
	"github.com/macropower/synthaser/pkg/log"
	"github.com/macropower/synthaser/pkg/rulegraph"
	"github.com/macropower/synthaser/pkg/synthase"
)

// ErrNoInput is returned when a run has no documents to read.
var ErrNoInput = errors.New("no input documents")

// Runner classifies the synthases in one or more documents. It manages:
//   - Loading the rule graph and input documents.
//   - Filtering, classification and relabeling.
//   - Filesystem notifications / watching.
type Runner struct {
	tracer    trace.Tracer
	watcher   *fsnotify.Watcher
	graph     *rulegraph.Graph
	query     *expr.Query
	relabeler *synthase.Relabeler
	config    *Config

	// Absolute paths of the watched input and rule files.
	watchedFiles map[string]struct{}

	// Absolute paths of the directories added to the watcher.
	watchedDirs map[string]struct{}

	cancelFunc context.CancelFunc
	runID      uint64
	listeners  []chan<- Event
	paths      []string
	mu         sync.Mutex
	watch      bool
}

// New creates a new [Runner] for the documents at paths.
func New(paths []string, opts ...Opt) (*Runner, error) {
	return NewContext(context.Background(), paths, opts...)
}

// NewContext creates a new [Runner] for the documents at paths.
func NewContext(ctx context.Context, paths []string, opts ...Opt) (*Runner, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	r := &Runner{
		watchedDirs:  make(map[string]struct{}),
		watchedFiles: make(map[string]struct{}),
		tracer:       otel.Tracer("runner"),
		relabeler:    synthase.DefaultRelabeler,
		config:       NewConfig(),
		watcher:      watcher,
		paths:        paths,
	}

	err = r.ConfigureContext(ctx, opts...)
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

type Opt func(r *Runner) error

// WithConfig sets the classification settings. The rule graph is reloaded
// from [Config.Rules] unless one is set with [WithGraph] after this option.
func WithConfig(c *Config) Opt {
	return func(r *Runner) error {
		c.EnsureDefaults()

		err := c.Validate()
		if err != nil {
			return fmt.Errorf("validate config: %w", err)
		}

		r.config = c
		r.graph = nil

		return nil
	}
}

// WithGraph sets the rule graph, ignoring [Config.Rules].
func WithGraph(g *rulegraph.Graph) Opt {
	return func(r *Runner) error {
		r.graph = g

		return nil
	}
}

// WithRelabeler sets the relabeler applied after classification. A nil
// relabeler disables relabeling.
func WithRelabeler(rl *synthase.Relabeler) Opt {
	return func(r *Runner) error {
		r.relabeler = rl

		return nil
	}
}

// WithPaths sets the paths of the input documents.
func WithPaths(paths ...string) Opt {
	return func(r *Runner) error {
		r.paths = paths

		return nil
	}
}

// WithWatch sets the watch flag for the runner.
func WithWatch(watch bool) Opt {
	return func(r *Runner) error {
		r.watch = watch

		return nil
	}
}

func (r *Runner) Configure(opts ...Opt) error {
	return r.ConfigureContext(context.Background(), opts...)
}

// ConfigureContext applies options to an existing runner.
// This allows reconfiguration after creation.
func (r *Runner) ConfigureContext(ctx context.Context, opts ...Opt) error {
	ctx, span := r.tracer.Start(ctx, "configure")
	defer span.End()

	logger := log.WithContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeWatchers(ctx)

	// Cancel any current run.
	if r.cancelFunc != nil {
		// Note: The cancel event is broadcast by the canceled run.
		r.cancelFunc()
	}

	for _, opt := range opts {
		err := opt(r)
		if err != nil {
			return fmt.Errorf("apply option: %w", err)
		}
	}

	if r.graph == nil {
		g, err := rulegraph.Load(r.config.Rules)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}

		r.graph = g
	}

	r.query = nil
	if r.config.Where != "" {
		q, err := expr.NewQuery(r.config.Where)
		if err != nil {
			return fmt.Errorf("compile where: %w", err)
		}

		r.query = q
	}

	if r.watch {
		err := r.watchFiles(ctx)
		if err != nil {
			return err
		}
	}

	r.broadcast(ctx, EventConfigure{})
	logger.DebugContext(ctx, "configured runner",
		slog.Any("paths", r.paths),
		slog.String("rules", r.config.Rules),
		slog.String("filter", string(r.config.Filter)),
		slog.Float64("threshold", r.config.Threshold),
		slog.Bool("watch", r.watch),
	)

	return nil
}

// Graph returns the rule graph used for classification.
func (r *Runner) Graph() *rulegraph.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.graph
}

// Config returns the active classification settings.
func (r *Runner) Config() *Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.config
}

// Run loads and classifies the configured documents.
func (r *Runner) Run() Output {
	return r.RunContext(context.Background())
}

// RunContext loads and classifies the configured documents. Documents that
// cannot be loaded are skipped and reported in [Output.Error]. Starting a
// run cancels any run still in progress.
func (r *Runner) RunContext(ctx context.Context) Output {
	r.mu.Lock()
	paths := r.paths
	r.mu.Unlock()

	return r.run(ctx, func(ctx context.Context) ([]*synthase.Synthase, error) {
		if len(paths) == 0 {
			return nil, ErrNoInput
		}

		return loadAll(ctx, paths)
	})
}

// ClassifyContext classifies synthases that are already in memory, using
// the same settings and events as [Runner.RunContext]. The synthases are
// modified in place.
func (r *Runner) ClassifyContext(ctx context.Context, synthases []*synthase.Synthase) Output {
	return r.run(ctx, func(context.Context) ([]*synthase.Synthase, error) {
		return synthases, nil
	})
}

func (r *Runner) run(
	ctx context.Context,
	load func(ctx context.Context) ([]*synthase.Synthase, error),
) Output {
	r.mu.Lock()

	var (
		cfg       = r.config
		graph     = r.graph
		query     = r.query
		relabeler = r.relabeler
	)

	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("rules", cfg.Rules),
		attribute.String("filter", string(cfg.Filter)),
		attribute.Float64("threshold", cfg.Threshold),
	))
	defer span.End()

	// Cancel any current run.
	if r.cancelFunc != nil {
		// Note: The cancel event is broadcast by the canceled run.
		r.cancelFunc()
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel
	r.runID++
	id := r.runID

	r.mu.Unlock()

	defer r.finish(id, cancel)

	r.broadcast(ctx, EventStart{})

	logger := log.WithContext(ctx)

	synthases, loadErr := load(ctx)
	if len(synthases) == 0 && loadErr != nil {
		return r.end(ctx, span, NewOutput(WithError(loadErr)))
	}

	for _, s := range synthases {
		cfg.Filter.Apply(s, cfg.Threshold)
	}

	classifyErr := synthase.Classify(ctx, synthases, graph,
		synthase.WithWorkers(cfg.Workers),
		synthase.WithRelabeler(relabeler),
	)
	if errors.Is(ctx.Err(), context.Canceled) {
		r.broadcast(ctx, EventCancel{})

		return NewOutput(WithError(ctx.Err()))
	}

	out := NewOutput(WithError(errors.Join(loadErr, classifyErr)))
	out.Total = len(synthases)
	out.Synthases = synthases

	if query != nil {
		selected, err := query.Filter(synthases)
		if err != nil {
			out.Error = errors.Join(out.Error, err)
		} else {
			out.Synthases = selected
		}
	}

	logger.InfoContext(ctx, "classified synthases",
		slog.Int("total", out.Total),
		slog.Int("selected", len(out.Synthases)),
	)

	return r.end(ctx, span, out)
}

// finish releases the context of the run with the given id. The stored
// cancel func is only cleared if no newer run has replaced it.
func (r *Runner) finish(id uint64, cancel context.CancelFunc) {
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runID == id {
		r.cancelFunc = nil
	}
}

func (r *Runner) end(ctx context.Context, span trace.Span, out Output) Output {
	if out.Error != nil {
		span.RecordError(out.Error)
		span.SetStatus(codes.Error, "run failed")
	}

	r.broadcast(ctx, EventEnd(out))

	return out
}

func loadAll(ctx context.Context, paths []string) ([]*synthase.Synthase, error) {
	var (
		all  []*synthase.Synthase
		errs []error
	)

	logger := log.WithContext(ctx)

	for _, path := range paths {
		synthases, err := synthase.Load(path)
		if err != nil {
			logger.WarnContext(ctx, "skipping document",
				slog.String("path", path),
				slog.Any("error", err),
			)

			errs = append(errs, err)

			continue
		}

		all = append(all, synthases...)
	}

	return all, errors.Join(errs...)
}

// Subscribe allows other components to listen for run events.
func (r *Runner) Subscribe(ch chan<- Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, ch)
}

func (r *Runner) broadcast(ctx context.Context, evt Event) {
	log.WithContext(ctx).DebugContext(ctx, "broadcasting event",
		slog.String("event", fmt.Sprintf("%T", evt)),
	)

	for _, ch := range r.listeners {
		ch <- evt
	}
}

func (r *Runner) watchFiles(ctx context.Context) error {
	files := make([]string, 0, len(r.paths)+1)
	files = append(files, r.paths...)
	if r.config.Rules != "" {
		files = append(files, r.config.Rules)
	}

	for _, file := range files {
		absFile, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", file, err)
		}

		dir := filepath.Dir(absFile)
		if _, ok := r.watchedDirs[dir]; !ok {
			err = r.watcher.Add(dir)
			if err != nil {
				return fmt.Errorf("add path to watcher: %w", err)
			}

			r.watchedDirs[dir] = struct{}{}
		}

		r.watchedFiles[absFile] = struct{}{}
	}

	log.WithContext(ctx).DebugContext(ctx, "added file watchers",
		slog.Int("files", len(r.watchedFiles)),
		slog.Int("dirs", len(r.watchedDirs)),
	)

	return nil
}

func (r *Runner) removeWatchers(ctx context.Context) {
	if r.watcher == nil || len(r.watchedDirs) == 0 {
		return
	}

	logger := log.WithContext(ctx)

	removedCount := 0
	for dir := range r.watchedDirs {
		err := r.watcher.Remove(dir)
		if errors.Is(err, fsnotify.ErrNonExistentWatch) {
			continue
		}
		if err != nil {
			logger.ErrorContext(ctx, "remove path from watcher", slog.Any("err", err))
		}

		removedCount++
	}

	logger.DebugContext(ctx, "removed file watchers", slog.Int("count", removedCount))

	clear(r.watchedDirs)
	clear(r.watchedFiles)
}

func (r *Runner) isFileWatched(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.watchedFiles[path]

	return ok
}

// RunOnEvent listens for file system events and re-runs in response. A
// change to the rule file reloads the rule graph first. The output should be
// collected via [Runner.Subscribe]. It returns when the runner is closed.
func (r *Runner) RunOnEvent() {
	for {
		select {
		case evt, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			if !r.isFileWatched(evt.Name) {
				continue
			}

			// Ignore events that are not related to file content changes.
			if evt.Has(fsnotify.Chmod) {
				continue
			}

			ctx := context.Background()

			if r.isRuleFile(evt.Name) {
				err := r.reloadRules(ctx)
				if err != nil {
					r.broadcast(ctx, EventEnd(NewOutput(WithError(err))))

					continue
				}
			}

			// Run in a goroutine so a newer event can cancel it.
			go r.RunContext(ctx)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}

			r.broadcast(context.Background(), EventEnd(NewOutput(WithError(err))))
		}
	}
}

func (r *Runner) isRuleFile(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Rules == "" {
		return false
	}

	abs, err := filepath.Abs(r.config.Rules)

	return err == nil && abs == path
}

func (r *Runner) reloadRules(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := rulegraph.Load(r.config.Rules)
	if err != nil {
		return fmt.Errorf("reload rules: %w", err)
	}

	r.graph = g

	log.WithContext(ctx).InfoContext(ctx, "reloaded rules", slog.String("path", r.config.Rules))

	return nil
}

// Close stops watching files. [Runner.RunOnEvent] returns after Close.
func (r *Runner) Close() {
	err := r.watcher.Close()
	if err != nil {
		slog.Error("close watcher", slog.Any("err", err))
	}
}
