package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"checkr/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [dir]",
	Short: "List the rules that apply to files in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().Bool("builtins", false, "list the builtin rules instead")
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type ruleEntry struct {
	Name   string `json:"name"`
	Origin string `json:"origin"`
	Doc    string `json:"doc,omitempty"`
}

type levelEntry struct {
	Path   string      `json:"path"`
	Kind   string      `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Rules  []ruleEntry `json:"rules,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	builtins, err := cmd.Flags().GetBool("builtins")
	if err != nil {
		return fmt.Errorf("failed to get builtins flag: %w", err)
	}
	out := cmd.OutOrStdout()

	if builtins {
		all := rules.Default.All()
		entries := make([]ruleEntry, 0, len(all))
		for _, b := range all {
			entries = append(entries, ruleEntry{Name: b.Name, Origin: "builtin", Doc: b.Doc})
		}
		if format == "json" {
			return encodeJSON(cmd, entries)
		}
		bold := color.New(color.Bold)
		for _, e := range entries {
			fmt.Fprintf(out, "%s\n    %s\n", bold.Sprint(e.Name), e.Doc)
		}
		return nil
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	_, outcomes := rules.Discover(dir, rules.FileLoader{})
	levels := make([]levelEntry, 0, len(outcomes))
	for _, o := range outcomes {
		lvl := levelEntry{Path: o.Path, Kind: o.Kind.String(), Reason: o.Reason}
		for _, r := range o.Rules {
			lvl.Rules = append(lvl.Rules, ruleEntry{Name: r.Name, Origin: r.Origin})
		}
		levels = append(levels, lvl)
	}
	if format == "json" {
		return encodeJSON(cmd, levels)
	}
	if len(levels) == 0 {
		fmt.Fprintf(out, "no %s found above %s\n", rules.ResourceName, dir)
		return nil
	}
	bad := color.New(color.FgRed, color.Bold)
	for _, lvl := range levels {
		switch lvl.Kind {
		case "malformed":
			fmt.Fprintf(out, "%s (%s: %s)\n", lvl.Path, bad.Sprint(lvl.Kind), lvl.Reason)
		case "empty":
			fmt.Fprintf(out, "%s (empty)\n", lvl.Path)
		default:
			fmt.Fprintf(out, "%s\n", lvl.Path)
		}
		for _, r := range lvl.Rules {
			fmt.Fprintf(out, "  %s\n", r.Name)
		}
	}
	return nil
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
