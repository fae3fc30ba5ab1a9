package cliui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"diffpatch/internal/model"
)

func TestRenderCreateSummaryIncludesCounts(t *testing.T) {
	counts := model.Counts{Added: 2, Modified: 1, ModifiedDiff: 3, Removed: 4}
	out := RenderCreateSummary(counts, "/tmp/patch.exe")
	require.Contains(t, out, "/tmp/patch.exe")
	require.Contains(t, out, "10")
}

func TestRenderApplySummarySkipped(t *testing.T) {
	out := RenderApplySummary(ApplySummary{Skipped: true})
	require.Contains(t, out, "skipped")
}

func TestStdinConfirmerDefaultsToNoOnEmptyInput(t *testing.T) {
	c := StdinConfirmer{In: strings.NewReader("\n"), Out: &bytes.Buffer{}}
	ok, err := c.Confirm("proceed?")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStdinConfirmerAcceptsYes(t *testing.T) {
	c := StdinConfirmer{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	ok, err := c.Confirm("proceed?")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLogrusReporterImplementsReporter(t *testing.T) {
	var r Reporter = &LogrusReporter{}
	r.Start("stage", 3)
	r.Step("stage")
	r.Step("stage")
	r.Done("stage")
}
