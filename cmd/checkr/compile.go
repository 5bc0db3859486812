package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"checkr/internal/pattern"
	"checkr/internal/source"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <template> [text]",
	Short: "Compile a code template and show the regular expression it becomes",
	Long: `Compile a code template to its regular expression. With text (or --file),
every match is printed with its captures split by kind.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().Bool("explain", false, "print the scaffold after every compiler stage")
	compileCmd.Flags().String("file", "", "search this file instead of the text argument")
	compileCmd.Flags().Duration("match-timeout", 2*time.Second, "time limit for the search")
}

func runCompile(cmd *cobra.Command, args []string) error {
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return fmt.Errorf("failed to get explain flag: %w", err)
	}
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to get file flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("match-timeout")
	if err != nil {
		return fmt.Errorf("failed to get match-timeout flag: %w", err)
	}
	out := cmd.OutOrStdout()

	p, err := pattern.Compile(args[0])
	if err != nil {
		var ce *pattern.CompileError
		if errors.As(err, &ce) && explain {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed at stage %s\n", ce.Stage)
		}
		return err
	}
	label := color.New(color.Faint)
	if explain {
		for _, st := range p.Explain() {
			fmt.Fprintf(out, "%s %s\n", label.Sprintf("%-22s", st.Stage), st.Text)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, p.Source())
	if groups := p.Groups(); len(groups) > 0 {
		names := slices.Sorted(maps.Keys(groups))
		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, n+"="+groups[n].String())
		}
		fmt.Fprintf(out, "%s %s\n", label.Sprint("groups"), strings.Join(parts, " "))
	}

	var text string
	switch {
	case file != "":
		fc, err := source.Load(file)
		if err != nil {
			return err
		}
		text = fc.Contents
	case len(args) == 2:
		text = args[1]
	default:
		return nil
	}
	return printMatches(out, p.WithTimeout(timeout), text)
}

func printMatches(out io.Writer, p *pattern.Pattern, text string) error {
	lines := source.NewLineIndex(text)
	hit := color.New(color.FgGreen, color.Bold)
	n := 0
	for m, err := range p.Matches(text) {
		if err != nil {
			return fmt.Errorf("match stopped: %w", err)
		}
		n++
		fmt.Fprintf(out, "\n%s line %d [%d:%d] %s\n", hit.Sprintf("#%d", n), lines.Line(m.Start), m.Start, m.End, quote(m.Text))
		r := m.Result()
		for _, kind := range []struct {
			name  string
			items []string
		}{
			{"variables", r.Variables},
			{"literals", r.Literals},
			{"keywords", r.Keywords},
			{"operators", r.Operators},
			{"blocks", r.Blocks},
			{"others", r.Others},
		} {
			if len(kind.items) == 0 {
				continue
			}
			quoted := make([]string, len(kind.items))
			for i, it := range kind.items {
				quoted[i] = quote(it)
			}
			fmt.Fprintf(out, "  %-10s %s\n", kind.name, strings.Join(quoted, " "))
		}
	}
	if n == 0 {
		fmt.Fprintln(out, "\nno matches")
	}
	return nil
}

func quote(s string) string {
	const maxLen = 80
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return fmt.Sprintf("%q", s)
}

