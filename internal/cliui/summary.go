// Package cliui renders the CLI-facing summary output described in
// SPEC_FULL.md's ambient-stack expansion: a styled replacement for the Rust
// original's plain-text "Found N file differences..." block
// (original_source/src/main.rs), built with github.com/charmbracelet/lipgloss
// the way echo-x-team-echo-cli styles its terminal output.
package cliui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"diffpatch/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
	countStyle  = lipgloss.NewStyle().Bold(true)
)

// Reporter is the named external collaborator spec.md §1 scopes progress
// indication out of the core lifecycle through. The CLI wires a real
// terminal-backed Reporter; tests can wire a no-op one.
type Reporter interface {
	Start(label string, total int)
	Step(label string)
	Done(label string)
}

// NullReporter discards every event. internal/envelope.Create and
// internal/applier.Apply fall back to it when given a nil Reporter.
type NullReporter struct{}

func (NullReporter) Start(string, int) {}
func (NullReporter) Step(string)       {}
func (NullReporter) Done(string)       {}

// RenderCreateSummary formats the change counts from a create run, matching
// the original's pre-flight narration but as a final styled block.
func RenderCreateSummary(counts model.Counts, outputPath string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Patch created") + "\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("output:"), outputPath)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("added:"), countStyle.Render(fmt.Sprint(counts.Added)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("modified:"), countStyle.Render(fmt.Sprint(counts.Modified)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("modified (diff):"), countStyle.Render(fmt.Sprint(counts.ModifiedDiff)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("removed:"), countStyle.Render(fmt.Sprint(counts.Removed)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("total changes:"), countStyle.Render(fmt.Sprint(counts.Total())))
	return b.String()
}

// ApplySummary mirrors applier.Result's fields without importing
// internal/applier, keeping cliui a leaf package.
type ApplySummary struct {
	Added, Modified, DiffsApplied, Removed, SkippedDiffs int
	Skipped                                              bool
}

// RenderApplySummary formats the outcome of an apply run.
func RenderApplySummary(s ApplySummary) string {
	var b strings.Builder
	if s.Skipped {
		b.WriteString(headerStyle.Render("Patch application skipped") + "\n")
		b.WriteString(labelStyle.Render("no verification files were confirmed") + "\n")
		return b.String()
	}
	b.WriteString(headerStyle.Render("Patch applied") + "\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("added:"), countStyle.Render(fmt.Sprint(s.Added)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("modified:"), countStyle.Render(fmt.Sprint(s.Modified)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("diffs applied:"), countStyle.Render(fmt.Sprint(s.DiffsApplied)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("removed:"), countStyle.Render(fmt.Sprint(s.Removed)))
	if s.SkippedDiffs > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("diffs skipped:"), countStyle.Render(fmt.Sprint(s.SkippedDiffs)))
	}
	return b.String()
}
