package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"slices"

	"checkr/internal/diag"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine  int `json:"startLine"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// ruleID names findings by rule and everything else by code.
func ruleID(d *diag.Diagnostic) string {
	if d.Rule != "" && d.Code == diag.RulFinding {
		return d.Rule
	}
	return d.Code.ID()
}

// Sarif writes the diagnostics as a SARIF 2.1.0 log with a single run.
// Each hit becomes one location of the result.
func Sarif(w io.Writer, diags []diag.Diagnostic, result diag.RunResult, meta SarifRunMeta) error {
	name := meta.ToolName
	if name == "" {
		name = "checkr"
	}
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: name, Version: meta.ToolVersion}},
		Results: make([]sarifResult, 0, len(diags)),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !result.Failed}}
	}

	rules := make(map[string]string)
	for i := range diags {
		d := &diags[i]
		id := ruleID(d)
		if _, ok := rules[id]; !ok {
			rules[id] = d.Code.Title()
		}
		res := sarifResult{
			RuleID:  id,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		uri := filepath.ToSlash(displayPath(d.Path, meta.PathMode, meta.BaseDir))
		if len(d.Hits) == 0 {
			res.Locations = []sarifLocation{{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: uri}}}}
		}
		for _, h := range d.Hits {
			res.Locations = append(res.Locations, sarifLocation{PhysicalLocation: sarifPhysical{
				ArtifactLocation: sarifArtifact{URI: uri},
				Region:           &sarifRegion{StartLine: h.Line, ByteOffset: h.Start, ByteLength: h.End - h.Start},
			}})
		}
		run.Results = append(run.Results, res)
	}

	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	run.Tool.Driver.Rules = make([]sarifRule, 0, len(ids))
	for _, id := range ids {
		r := sarifRule{ID: id}
		if title := rules[id]; title != "" {
			r.ShortDescription = &sarifMessage{Text: title}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}
