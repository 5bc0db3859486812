package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"checkr/internal/driver"
	"checkr/internal/pipeline"
	"checkr/internal/ui"
)

type checkOutcome struct {
	report *driver.Report
	err    error
}

func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Report, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	opts.Progress = pipeline.MultiSink{opts.Progress, pipeline.ChannelSink{Ch: events}}
	go func() {
		report, err := driver.CheckFiles(ctx, files, opts)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	display := make([]string, len(files))
	for i, f := range files {
		display[i] = driver.DisplayPath(f, opts.BaseDir)
	}
	model := ui.NewProgressModel(title, display, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ctrl+c): дочитываем события, чтобы воркеры не встали
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
