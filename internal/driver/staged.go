package driver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// StagedFiles lists the files staged for commit in the repository that
// contains repoDir, as absolute paths. Deleted files are not listed.
func StagedFiles(ctx context.Context, repoDir string) ([]string, error) {
	top, err := git(ctx, repoDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	top = strings.TrimSpace(top)
	out, err := git(ctx, repoDir, "diff", "--staged", "--name-only", "--diff-filter=ACMR")
	if err != nil {
		return nil, err
	}
	return parseNameList(top, out), nil
}

// parseNameList resolves git's repository-relative paths against top.
func parseNameList(top, out string) []string {
	var files []string
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		files = append(files, filepath.Join(top, filepath.FromSlash(line)))
	}
	return files
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
