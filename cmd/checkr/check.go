package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"checkr/internal/config"
	"checkr/internal/diag"
	"checkr/internal/driver"
	"checkr/internal/observ"
	"checkr/internal/pipeline"
	"checkr/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Check files and directories against the rules above them",
	Long: `Check files against every checkr.toml found in their directory and its ancestors.
Directories are walked recursively. With no arguments the working directory is checked.`,
	RunE: runCheck,
}

var stagedCmd = &cobra.Command{
	Use:   "staged [flags]",
	Short: "Check the files staged in git (pre-commit hook)",
	Args:  cobra.NoArgs,
	RunE:  runStaged,
}

func init() {
	for _, cmd := range []*cobra.Command{checkCmd, stagedCmd} {
		addCheckFlags(cmd)
	}
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Int("max-matches", 50, "matches reported per rule and file")
	cmd.Flags().Duration("match-timeout", 2*time.Second, "time limit for one pattern search")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged files")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().StringSlice("disable", nil, "rule names to skip")
}

// settings merges checkrc.toml with the flags the user set explicitly.
func settings(cmd *cobra.Command) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("jobs") {
		cfg.Run.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("max-matches") {
		cfg.Run.MaxMatches, _ = flags.GetInt("max-matches")
	}
	if flags.Changed("match-timeout") {
		cfg.Run.MatchTimeout.Duration, _ = flags.GetDuration("match-timeout")
	}
	if flags.Changed("cache") {
		cfg.Run.Cache, _ = flags.GetBool("cache")
	}
	if flags.Changed("disable") {
		extra, _ := flags.GetStringSlice("disable")
		cfg.Rules.Disable = append(cfg.Rules.Disable, extra...)
	}
	if full, _ := flags.GetBool("fullpath"); full {
		cfg.Output.Paths = "absolute"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func driverOptions(cmd *cobra.Command, cfg *config.Config) (driver.Options, error) {
	wd, err := os.Getwd()
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		Jobs:         cfg.Run.Jobs,
		MaxMatches:   cfg.Run.MaxMatches,
		MatchTimeout: cfg.Run.MatchTimeout.Duration,
		Disable:      cfg.Rules.Disable,
		BaseDir:      wd,
	}
	if cfg.Run.Cache {
		cache, err := driver.OpenResultCache("checkr")
		if err != nil {
			// без кэша проверка всё равно работает
			trace.Point(trace.FromContext(cmd.Context()), trace.ScopeRun, "cache-disabled", err.Error())
		} else {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	return checkPaths(cmd, paths, mode)
}

func runStaged(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	paths, err := driver.StagedFiles(cmd.Context(), wd)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no staged files")
		}
		return nil
	}
	return checkPaths(cmd, paths, uiModeOff)
}

func checkPaths(cmd *cobra.Command, paths []string, mode uiMode) error {
	cfg, err := settings(cmd)
	if err != nil {
		return startError(err)
	}
	opts, err := driverOptions(cmd, cfg)
	if err != nil {
		return startError(err)
	}
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	timer := observ.NewTimer()
	if showTimings {
		opts.Timings = &pipeline.Timings{}
	}

	var counter pipeline.Counter
	opts.Progress = &counter
	heartbeat := startHeartbeat(counter.String)
	defer heartbeat.Stop()

	done := timer.Track("check")
	var report *driver.Report
	if cfg.Output.Format == "pretty" && shouldUseTUI(mode) {
		report, err = runCheckWithUI(cmd.Context(), "checking", paths, opts)
	} else {
		report, err = driver.CheckFiles(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}
	done(fmt.Sprintf("%d files", len(paths)))

	renderDone := timer.Track("render")
	if err := render(cmd, cfg, report.Diagnostics, report.RunResult, os.Args[1:]); err != nil {
		return err
	}
	renderDone("")

	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), opts.Timings)
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return exitFor(report.RunResult)
}

func exitFor(result diag.RunResult) error {
	if result.Failed {
		return findingsFailed()
	}
	return nil
}
