package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"checkr/internal/config"
	"checkr/internal/diag"
	"checkr/internal/diagfmt"
	"checkr/internal/pipeline"
	"checkr/internal/version"
)

// render writes diags to stdout in the configured format.
func render(cmd *cobra.Command, cfg *config.Config, diags []diag.Diagnostic, result diag.RunResult, invocation []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(cfg.Output.Paths)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch cfg.Output.Format {
	case "pretty":
		if len(diags) == 0 {
			if !quiet {
				fmt.Fprintln(out, "no problems")
			}
			return nil
		}
		return diagfmt.Pretty(out, diags, diagfmt.PrettyOpts{
			Color:    useColor(cmd, cfg.Output.Color),
			PathMode: pathMode,
			BaseDir:  wd,
			Max:      maxDiagnostics,
			Summary:  !quiet,
		})
	case "short":
		return diagfmt.Short(out, diags, wd, maxDiagnostics)
	case "json":
		return diagfmt.JSON(out, diags, result, diagfmt.JSONOpts{
			PathMode: pathMode,
			BaseDir:  wd,
			Max:      maxDiagnostics,
		})
	case "sarif":
		return diagfmt.Sarif(out, diags, result, diagfmt.SarifRunMeta{
			ToolName:       "checkr",
			ToolVersion:    version.Version,
			InvocationArgs: invocation,
			PathMode:       pathMode,
			BaseDir:        wd,
		})
	default:
		return fmt.Errorf("unknown format: %s", cfg.Output.Format)
	}
}

func printStageTimings(out io.Writer, timings *pipeline.Timings) {
	if out == nil || timings == nil {
		return
	}
	for _, stage := range []pipeline.Stage{pipeline.StageLoad, pipeline.StageDiscover, pipeline.StageCheck} {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%s %.1f ms (all workers)\n", stage, toMillis(timings.Duration(stage)))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
