package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"checkr/internal/diag"
	"checkr/internal/diagfmt"
	"checkr/internal/driver"
	"checkr/internal/trace"
	"checkr/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [dir]",
	Short: "Re-check files as they are saved",
	Long: `Watch a directory tree and re-check each file when it is written.
Every re-check replaces the previous diagnostics of that file; editing a
checkr.toml re-checks the files below it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addCheckFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 100*time.Millisecond, "quiet period before a batch of saves is checked")
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	cfg, err := settings(cmd)
	if err != nil {
		return startError(err)
	}
	// между сохранениями результат кэша только мешает
	cfg.Run.Cache = false
	opts, err := driverOptions(cmd, cfg)
	if err != nil {
		return startError(err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	tracer := trace.FromContext(ctx)
	out := cmd.OutOrStdout()
	color := useColor(cmd, cfg.Output.Color)

	session := watch.NewSession(opts, func(u watch.Update) {
		rel := driver.DisplayPath(u.Path, opts.BaseDir)
		switch {
		case u.Removed:
			if u.Cleared > 0 {
				fmt.Fprintf(out, "%s: removed, %d cleared\n", rel, u.Cleared)
			}
			return
		case len(u.Diagnostics) == 0:
			if u.Cleared > 0 || !quiet {
				fmt.Fprintf(out, "%s: ok\n", rel)
			}
			return
		}
		fmt.Fprintf(out, "%s: %s\n", rel, diagfmt.Summary(u.Diagnostics))
		_ = diagfmt.Pretty(out, u.Diagnostics, diagfmt.PrettyOpts{Color: color, BaseDir: opts.BaseDir})
	})

	paths, err := driver.ExpandPaths([]string{root})
	if err != nil {
		return err
	}
	if _, err := session.Check(ctx, paths); err != nil {
		return err
	}

	opt := watch.DefaultOptions()
	opt.Debounce = debounce
	opt.OnError = func(err error) {
		trace.Error(tracer, "watch", err.Error())
		fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
	}
	batches := make(chan []watch.Change, 16)
	w, err := watch.New(root, func(batch []watch.Change) {
		select {
		case batches <- batch:
		case <-ctx.Done():
		}
	}, &opt)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", root)
	}
	heartbeat := startHeartbeat(func() string {
		return fmt.Sprintf("idle, %d files tracked", session.Len())
	})
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return exitFor(diag.RunResult{Failed: session.Failed()})
		case batch := <-batches:
			span := trace.Begin(tracer, trace.ScopeRun, "watch-batch", 0).WithExtra("changes", fmt.Sprint(len(batch)))
			_, err := session.Handle(ctx, batch)
			span.End("")
			if err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}
