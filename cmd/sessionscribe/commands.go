package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/sessionscribe/config"
	"github.com/kbukum/sessionscribe/errors"
	"github.com/kbukum/sessionscribe/logger"
	"github.com/kbukum/sessionscribe/reconcile"
	"github.com/kbukum/sessionscribe/resilience"
	"github.com/kbukum/sessionscribe/sessionio"
	"github.com/kbukum/sessionscribe/transcript"
	"github.com/kbukum/sessionscribe/version"
)

type command struct {
	summary string
	// needsPath commands take exactly one positional argument.
	needsPath bool
	exec      func(ctx context.Context, env *runEnv, path string) error
}

var commands = map[string]command{
	"clean":   {summary: "deduplicate every recording in DIR", needsPath: true, exec: runClean},
	"merge":   {summary: "deduplicate and merge the recordings in DIR", needsPath: true, exec: runMerge},
	"full":    {summary: "clean and merge DIR in one pass", needsPath: true, exec: runFull},
	"export":  {summary: "render a merged transcript FILE as markdown, text or JSON", needsPath: true, exec: runExport},
	"version": {summary: "print version information", exec: runVersion},
}

var commandOrder = []string{"clean", "merge", "full", "export", "version"}

// flags are the command-line overrides; only flags the user set are applied.
type flags struct {
	configFile string
	logLevel   string
	logFormat  string
	workers    int
	timeWindow float64
	threshold  float64
	noDedup    bool
	pattern    string
	suffix     string
	outputDir  string
	output     string
	markdown   string
	title      string
	join       bool
	priority   []string
	offsets    map[string]string
	format     string
	users      []string
	from       float64
	to         float64
	minDur     float64
	minChars   int
}

type runEnv struct {
	cfg    *config.Config
	flags  *flags
	log    *logger.Logger
	stdout io.Writer
}

func newFlagSet(name string, f *flags, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.configFile, "config", "c", "", "config file (default: searched)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json, pretty")
	fs.IntVarP(&f.workers, "workers", "j", 0, "concurrent workers (0 = one per CPU)")
	fs.Float64Var(&f.timeWindow, "time-window", 0, "max seconds between duplicates")
	fs.Float64Var(&f.threshold, "threshold", 0, "min text similarity of duplicates (0-1]")
	fs.BoolVar(&f.noDedup, "no-dedup", false, "merge without deduplicating")
	fs.StringVarP(&f.pattern, "pattern", "p", "", "recording file glob")
	fs.StringVar(&f.suffix, "suffix", "", "suffix of cleaned recording files")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory for cleaned recordings")
	fs.StringVarP(&f.output, "output", "o", "", "output file (merged JSON, or markdown for export; - for stdout)")
	fs.StringVar(&f.markdown, "markdown", "", "also write a markdown export to this file")
	fs.StringVar(&f.title, "title", "", "markdown title")
	fs.BoolVar(&f.join, "join", false, "join a speaker's consecutive lines in markdown")
	fs.StringSliceVar(&f.priority, "priority", nil, "source ids in tie-break order")
	fs.StringToStringVar(&f.offsets, "offset", nil, "clock offset per source, e.g. --offset Bob=1.5")
	fs.StringVarP(&f.format, "format", "f", "", "export format: md, txt, json (default: from --output, else md)")
	fs.StringSliceVarP(&f.users, "user", "u", nil, "export only these speakers")
	fs.Float64Var(&f.from, "from", 0, "export segments starting at or after this second")
	fs.Float64Var(&f.to, "to", 0, "export segments starting before this second (0 = end)")
	fs.Float64Var(&f.minDur, "min-duration", 0, "export segments at least this many seconds long")
	fs.IntVar(&f.minChars, "min-chars", 0, "export segments with at least this many characters")
	return fs
}

func (c command) run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	fs := newFlagSet("sessionscribe", &f, stderr)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	var path string
	if c.needsPath {
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "expected exactly one path argument")
			return exitUsage
		}
		path = fs.Arg(0)
	}

	env := &runEnv{flags: &f, stdout: stdout}
	if c.needsPath {
		cfg, err := loadConfig(fs, &f)
		if err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return exitError
		}
		logger.Init(cfg.Logging)
		logger.RegisterDefaults("cli", "reconcile")
		env.cfg = cfg
		env.log = logger.Get("cli")
	}

	if err := c.exec(ctx, env, path); err != nil {
		if env.log != nil {
			env.log.WithError(err).Error("command failed", logger.Fields(logger.FieldCode, errors.CodeOf(err)))
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitError
	}
	return exitOK
}

// loadConfig loads the config and applies the flags the user set.
func loadConfig(fs *pflag.FlagSet, f *flags) (*config.Config, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}

	set := fs.Changed
	if set("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("time-window") {
		cfg.Dedup.TimeWindow = f.timeWindow
	}
	if set("threshold") {
		cfg.Dedup.SimilarityThreshold = f.threshold
	}
	if set("no-dedup") {
		cfg.Dedup.Enabled = !f.noDedup
	}
	if set("pattern") {
		cfg.Merge.Pattern = f.pattern
	}
	if set("suffix") {
		cfg.Clean.Suffix = f.suffix
	}
	if set("output-dir") {
		cfg.Clean.OutputDir = f.outputDir
	}
	if set("priority") {
		cfg.Merge.Priority = f.priority
	}
	if set("offset") {
		if cfg.Merge.ClockOffsets == nil {
			cfg.Merge.ClockOffsets = make(map[string]float64, len(f.offsets))
		}
		for source, raw := range f.offsets {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, errors.InvalidConfig("offset", fmt.Sprintf("%s=%s is not a number", source, raw))
			}
			cfg.Merge.ClockOffsets[source] = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSession discovers and loads the recordings in dir. Files that fail to
// load are logged and skipped.
func loadSession(ctx context.Context, env *runEnv, dir string) ([]transcript.Recording, error) {
	cfg := env.cfg
	exclude := []string{cfg.Merge.OutputFilename, "*" + sessionio.ExportJSONSuffix}
	// cleaned copies are skipped unless the pattern asks for them
	if !strings.Contains(cfg.Merge.Pattern, cfg.Clean.Suffix) {
		exclude = append(exclude, "*"+cfg.Clean.Suffix+".json")
	}
	paths, err := sessionio.Discover(dir, cfg.Merge.Pattern, exclude...)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.EmptyInput().WithDetail("dir", dir).WithDetail("pattern", cfg.Merge.Pattern)
	}
	env.log.Info("recordings discovered", logger.Fields(logger.FieldRecordings, len(paths), logger.FieldPath, dir))

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		env.log.WithError(err).Warn("retrying read", logger.Fields("attempt", attempt, "backoff", backoff.String()))
	}
	recs, failures, err := sessionio.LoadAll(ctx, paths, sessionio.LoadOptions{
		Workers:      cfg.Workers,
		ClockOffsets: cfg.Merge.ClockOffsets,
		Retry:        &retry,
	})
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		env.log.WithFields(f.Err.Details).WithError(f.Err).Warn("recording skipped",
			logger.Fields(logger.FieldPath, f.Path, logger.FieldCode, f.Err.Code))
	}
	if len(recs) == 0 {
		return nil, errors.EmptyInput().WithDetail("dir", dir)
	}
	return recs, nil
}

func reconcileOptions(env *runEnv) reconcile.Options {
	return reconcile.Options{
		Dedup:     env.cfg.DedupParams(),
		Merge:     env.cfg.MergeOptions(),
		Workers:   env.cfg.Workers,
		SkipDedup: !env.cfg.Dedup.Enabled,
		Logger:    logger.Get("reconcile"),
	}
}

func runClean(ctx context.Context, env *runEnv, dir string) error {
	recs, err := loadSession(ctx, env, dir)
	if err != nil {
		return err
	}
	outcomes, err := reconcile.DeduplicateAll(ctx, recs, reconcileOptions(env))
	if err != nil {
		return err
	}
	written, err := writeCleaned(env, recs, outcomes)
	if err != nil {
		return err
	}
	if written == 0 {
		return errors.New(errors.ErrCodeNoSegments, "no recording could be cleaned")
	}
	return nil
}

func writeCleaned(env *runEnv, recs []transcript.Recording, outcomes []reconcile.Outcome) (int, error) {
	written := 0
	for i, o := range outcomes {
		if o.Err != nil {
			env.log.WithSource(recs[i].SourceID).Warn("recording not cleaned",
				logger.Fields(logger.FieldPath, recs[i].Path, logger.FieldCode, o.Err.Code, logger.FieldError, o.Err.Message))
			continue
		}
		out := sessionio.CleanedPath(recs[i].Path, env.cfg.Clean.OutputDir, env.cfg.Clean.Suffix)
		if err := sessionio.WriteRecording(out, o.Recording); err != nil {
			return written, err
		}
		written++
		fmt.Fprintf(env.stdout, "%s: %d -> %d segments (%d duplicates, %d dropped) -> %s\n",
			o.Report.SourceID, o.Report.Input, o.Report.Kept, o.Report.DuplicatesRemoved, o.Report.Dropped, out)
	}
	return written, nil
}

func runMerge(ctx context.Context, env *runEnv, dir string) error {
	_, _, err := mergeSession(ctx, env, dir)
	return err
}

func runFull(ctx context.Context, env *runEnv, dir string) error {
	recs, res, err := mergeSession(ctx, env, dir)
	if err != nil {
		return err
	}
	if !env.cfg.Dedup.Enabled {
		return nil
	}
	_, err = writeCleaned(env, recs, res.Deduplicated)
	return err
}

func mergeSession(ctx context.Context, env *runEnv, dir string) ([]transcript.Recording, *reconcile.Result, error) {
	recs, err := loadSession(ctx, env, dir)
	if err != nil {
		return nil, nil, err
	}
	res, err := reconcile.Reconcile(ctx, recs, reconcileOptions(env))
	if err != nil {
		return nil, nil, err
	}

	out := env.flags.output
	if out == "" {
		out = filepath.Join(dir, env.cfg.Merge.OutputFilename)
	}
	if err := sessionio.WriteMerged(out, res.Transcript); err != nil {
		return nil, nil, err
	}
	if env.flags.markdown != "" {
		meta := markdownMeta(env, out)
		if err := sessionio.WriteMarkdown(env.flags.markdown, res.Transcript, meta); err != nil {
			return nil, nil, err
		}
	}

	d := res.Diagnostics
	if d.HasIssues() {
		env.log.Warn(d.Summary(), logger.Fields(logger.FieldRunID, d.RunID))
	}
	info := res.Transcript.Info
	fmt.Fprintf(env.stdout, "merged %d recordings: %d segments, %d participants, %.1fs -> %s\n",
		len(recs)-len(d.Excluded), info.SegmentCount, len(info.Usernames), info.TotalDuration, out)
	return recs, res, nil
}

func runExport(_ context.Context, env *runEnv, path string) error {
	f := env.flags
	filter := sessionio.Filter{
		Users:       f.users,
		From:        f.from,
		To:          f.to,
		MinDuration: f.minDur,
		MinChars:    f.minChars,
	}
	if err := filter.Validate(); err != nil {
		return err
	}
	format, err := sessionio.FormatFor(f.format, f.output)
	if err != nil {
		return err
	}
	mt, err := sessionio.LoadMerged(path)
	if err != nil {
		return err
	}
	total := mt.Info.SegmentCount
	mt = filter.Apply(mt)
	if !filter.IsZero() {
		env.log.Debug("export filtered", logger.Fields("kept", mt.Info.SegmentCount, "removed", total-mt.Info.SegmentCount))
	}

	meta := markdownMeta(env, path)
	switch out := f.output; out {
	case "-":
		data, err := sessionio.Render(format, mt, meta)
		if err != nil {
			return err
		}
		_, err = env.stdout.Write(data)
		return err
	case "":
		out = strings.TrimSuffix(path, filepath.Ext(path)) + exportSuffix(format)
		fallthrough
	default:
		if err := sessionio.Export(out, format, mt, meta); err != nil {
			return err
		}
		fmt.Fprintf(env.stdout, "exported %d segments -> %s\n", mt.Info.SegmentCount, out)
		return nil
	}
}

// exportSuffix keeps a JSON export from overwriting the merged file it was read from.
func exportSuffix(format string) string {
	if format == sessionio.FormatJSON {
		return sessionio.ExportJSONSuffix
	}
	return "." + format
}

func markdownMeta(env *runEnv, source string) sessionio.Metadata {
	return sessionio.Metadata{
		Title:           env.flags.title,
		Source:          filepath.Base(source),
		Generated:       "sessionscribe " + version.Get().Short(),
		JoinConsecutive: env.flags.join,
	}
}

func runVersion(_ context.Context, env *runEnv, _ string) error {
	_, err := fmt.Fprintln(env.stdout, version.Get().String())
	return err
}
