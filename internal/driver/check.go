package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"checkr/internal/check"
	"checkr/internal/diag"
	"checkr/internal/pattern"
	"checkr/internal/pipeline"
	"checkr/internal/rules"
	"checkr/internal/source"
	"checkr/internal/trace"
	"checkr/internal/version"
)

// Options configure CheckFiles.
type Options struct {
	Jobs         int // 0 = GOMAXPROCS
	MaxMatches   int
	MatchTimeout time.Duration
	Disable      []string     // rule names to skip
	Loader       rules.Loader // nil = a fresh cached FileLoader per call
	Cache        *ResultCache // nil disables the result cache
	Patterns     *pattern.Cache
	Progress     pipeline.Sink
	Timings      *pipeline.Timings
	BaseDir      string // progress events carry paths relative to it
}

// FileResult is the outcome for one input path.
type FileResult struct {
	Path        string
	Diagnostics []diag.Diagnostic
	Failed      bool
	Rules       int  // rules that ran
	Cached      bool // result came from the cache
	Skipped     bool // unreadable, or a rule resource

	outcomes []rules.Outcome
}

// Report is the outcome of a whole run.
type Report struct {
	Files []FileResult
	// Diagnostics holds configuration problems first, each resource once,
	// then every file's diagnostics in input order.
	Diagnostics []diag.Diagnostic
	RunResult   diag.RunResult
}

func (r *Report) add(d diag.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	r.RunResult.Record(d)
}

// CheckFiles checks paths in parallel. Per-file problems become diagnostics;
// the error is non-nil only when ctx is cancelled.
func CheckFiles(ctx context.Context, paths []string, opts Options) (*Report, error) {
	if len(paths) == 0 {
		return &Report{}, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Loader == nil {
		opts.Loader = rules.NewCachedLoader(rules.FileLoader{})
	}
	if opts.Patterns == nil {
		opts.Patterns = &pattern.Cache{}
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "check-files", trace.CurrentSpan(ctx).SpanID)
	span.WithExtra("files", strconv.Itoa(len(paths)))
	defer span.End("")

	display := make([]string, len(paths))
	for i, p := range paths {
		display[i] = DisplayPath(p, opts.BaseDir)
	}
	pipeline.EmitQueued(opts.Progress, display)

	c := &checker{opts: opts, tracer: tracer, parent: span.ID(), settings: settingsKey(opts)}
	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkOne(gctx, path, display[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return merge(results), nil
}

func merge(results []FileResult) *Report {
	report := &Report{Files: results}
	dedup := diag.NewDedupReporter(diag.ReporterFunc(report.add))
	for i := range results {
		for _, d := range rules.Diagnostics(results[i].outcomes) {
			dedup.Report(d)
		}
	}
	for i := range results {
		for _, d := range results[i].Diagnostics {
			report.add(d)
		}
	}
	return report
}

type checker struct {
	opts     Options
	tracer   trace.Tracer
	parent   uint64
	settings string
}

func (c *checker) checkOne(ctx context.Context, path, display string) FileResult {
	span := trace.Begin(c.tracer, trace.ScopeFile, "file", c.parent).WithExtra("path", path)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID(), Scope: trace.ScopeFile})
	res := FileResult{Path: path}
	defer func() {
		span.WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics)))
		span.End("")
	}()

	start := time.Now()
	c.emit(display, pipeline.StageLoad, pipeline.StatusWorking, nil, 0, 0)
	file, err := source.Load(path)
	c.opts.Timings.Add(pipeline.StageLoad, time.Since(start))
	if err != nil {
		// хук игнорирует заблокированные и удалённые файлы: только предупреждение
		if abs, absErr := filepath.Abs(path); absErr == nil {
			res.Path = abs
		}
		res.Skipped = true
		res.Diagnostics = []diag.Diagnostic{{
			Path:     res.Path,
			Code:     diag.IOLoadFileError,
			Severity: diag.SevWarning,
			Message:  "failed to load file: " + err.Error(),
		}}
		trace.Point(c.tracer, trace.ScopeFile, "load-error", err.Error(), "path", path)
		c.emit(display, pipeline.StageLoad, pipeline.StatusError, err, time.Since(start), 1)
		return res
	}
	res.Path = file.Path
	if rules.IsResource(file) {
		res.Skipped = true
		c.emit(display, pipeline.StageLoad, pipeline.StatusDone, nil, time.Since(start), 0)
		return res
	}

	discoverStart := time.Now()
	c.emit(display, pipeline.StageDiscover, pipeline.StatusWorking, nil, 0, 0)
	ruleset, outcomes := rules.Discover(file.Dir, c.opts.Loader)
	ruleset = c.enabled(ruleset)
	res.outcomes = outcomes
	res.Rules = len(ruleset)
	c.opts.Timings.Add(pipeline.StageDiscover, time.Since(discoverStart))

	checkStart := time.Now()
	c.emit(display, pipeline.StageCheck, pipeline.StatusWorking, nil, 0, 0)
	var key Digest
	if c.opts.Cache != nil && len(ruleset) > 0 {
		key = ResultKey(version.Fingerprint(), file, outcomes, c.settings)
		cached, ok, err := c.opts.Cache.Get(key)
		if err != nil {
			trace.Point(c.tracer, trace.ScopeFile, "cache-error", err.Error(), "path", path)
		}
		if ok {
			res.Diagnostics = cached.Diagnostics
			res.Failed = cached.Failed
			res.Cached = true
			c.opts.Timings.Add(pipeline.StageCheck, time.Since(checkStart))
			c.emit(display, pipeline.StageCheck, pipeline.StatusCached, nil, time.Since(start), len(res.Diagnostics))
			return res
		}
	}

	out := check.Run(ctx, file, ruleset, check.Options{
		MaxMatches:   c.opts.MaxMatches,
		MatchTimeout: c.opts.MatchTimeout,
		Cache:        c.opts.Patterns,
	})
	res.Diagnostics = out.Diagnostics
	res.Failed = out.RunResult.Failed
	c.opts.Timings.Add(pipeline.StageCheck, time.Since(checkStart))

	if c.opts.Cache != nil && len(ruleset) > 0 && ctx.Err() == nil {
		if err := c.opts.Cache.Put(key, &CachedResult{Path: file.Path, Diagnostics: out.Diagnostics, Failed: res.Failed}); err != nil {
			trace.Point(c.tracer, trace.ScopeFile, "cache-error", err.Error(), "path", path)
		}
	}
	c.emit(display, pipeline.StageCheck, pipeline.StatusDone, nil, time.Since(start), len(res.Diagnostics))
	return res
}

func (c *checker) enabled(ruleset []check.Rule) []check.Rule {
	if len(c.opts.Disable) == 0 {
		return ruleset
	}
	out := make([]check.Rule, 0, len(ruleset))
	for _, r := range ruleset {
		if slices.Contains(c.opts.Disable, r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (c *checker) emit(file string, stage pipeline.Stage, status pipeline.Status, err error, elapsed time.Duration, diags int) {
	pipeline.Emit(c.opts.Progress, pipeline.Event{
		File:        file,
		Stage:       stage,
		Status:      status,
		Err:         err,
		Elapsed:     elapsed,
		Diagnostics: diags,
	})
}

// settingsKey captures the options that change results.
func settingsKey(opts Options) string {
	disable := slices.Clone(opts.Disable)
	slices.Sort(disable)
	return fmt.Sprintf("max=%d;timeout=%s;disable=%s", opts.MaxMatches, opts.MatchTimeout, strings.Join(disable, ","))
}

// DisplayPath is the path shown in progress events.
func DisplayPath(path, baseDir string) string {
	if baseDir == "" {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(source.RelativePath(abs, baseDir))
}
