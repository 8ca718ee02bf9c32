package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineDiff(t *testing.T) {
	old := "one\ntwo\nthree\nfour\nfive\nsix\nseven\n"
	new := "one\ntwo\nthree\nfour\nFIVE\nsix\nseven\n"

	got := LineDiff(old, new, 1)
	assert.Equal(t, []DiffLine{
		{' ', "..."},
		{' ', "four"},
		{'-', "five"},
		{'+', "FIVE"},
		{' ', "six"},
		{' ', "..."},
	}, got)

	assert.Equal(t, []DiffLine{{' ', "..."}}, LineDiff("same\n", "same\n", 0))
	assert.Equal(t, []DiffLine{{'+', "new"}}, LineDiff("", "new\n", 2))
	assert.Len(t, LineDiff(old, new, -1), 8)
}

func TestPrinter_Plan(t *testing.T) {
	src := assets.New("claude", assets.Layout{}, assets.TypeCommands, "/c/commands/review.md", "commands/review.md", "new body\n", time.Time{}, nil)
	existing := assets.New("cursor", assets.Layout{}, assets.TypeCommands, "/u/commands/review.md", "commands/review.md", "old body\n", time.Time{}, nil)

	plan := &reconcile.Plan{Entries: []*reconcile.Entry{
		{Source: src, Target: "cursor", TargetPath: "/u/commands/review.md", TargetRel: "commands/review.md", Action: reconcile.ActionUpdate, Reason: reconcile.ReasonChanged, Existing: existing},
		{Source: src, Target: "codex", TargetPath: "/x/prompts/review.md", TargetRel: "prompts/review.md", Action: reconcile.ActionCreate, Reason: reconcile.ReasonNew},
	}}

	var buf bytes.Buffer
	New(&buf).Plan(plan, true)
	out := buf.String()

	assert.Contains(t, out, "cursor\n")
	assert.Contains(t, out, "update commands/review.md <- claude, content differs")
	assert.Contains(t, out, "- old body")
	assert.Contains(t, out, "+ new body")
	assert.Contains(t, out, "create prompts/review.md (from commands/review.md)")
	assert.Contains(t, out, "1 to create, 1 to update, 0 skipped")
}

func TestPrinter_Result(t *testing.T) {
	src := assets.New("a", assets.Layout{}, assets.TypeAgents, "/a/AGENTS.md", "AGENTS.md", "x", time.Time{}, nil)
	res := &apply.Result{
		RunID:      "run-1",
		Failed:     1,
		RolledBack: true,
		Errors:     []string{"/b/AGENTS.md: boom"},
		Outcomes: []*apply.Outcome{
			{Entry: &reconcile.Entry{Source: src, TargetPath: "/b/AGENTS.md"}, Status: apply.StatusFailed},
		},
	}

	var buf bytes.Buffer
	New(&buf).Result(res)
	out := buf.String()
	assert.Contains(t, out, "failed /b/AGENTS.md")
	assert.Contains(t, out, "error /b/AGENTS.md: boom")
	assert.Contains(t, out, "(rolled back)")
	assert.Contains(t, out, "run run-1")
}

func TestPrinter_ConflictsAndAssets(t *testing.T) {
	mod := time.Now().Add(-2 * time.Hour)
	a := assets.New("a", assets.Layout{}, assets.TypeAgents, "/a/AGENTS.md", "AGENTS.md", "alpha beta", mod, nil)
	b := assets.New("b", assets.Layout{}, assets.TypeAgents, "/b/AGENTS.md", "AGENTS.md", "alpha gamma", time.Time{}, nil)
	conflicts := reconcile.DetectConflicts([]*assets.Asset{a, b})
	require.Len(t, conflicts, 1)
	require.NoError(t, conflicts[0].Resolve(reconcile.SelectVersion(0)))

	var buf bytes.Buffer
	p := New(&buf)
	p.Conflicts(conflicts)
	p.Assets([]*assets.Asset{a, b})
	out := buf.String()

	assert.Contains(t, out, "conflict agents:AGENTS.md")
	assert.Contains(t, out, "#1 a AGENTS.md")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "unknown age")
	assert.Contains(t, out, "resolved: select #1")
	assert.Contains(t, out, "2 asset(s)")
}

func TestPrinter_Prune(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Prune(&syncer.PruneResult{DryRun: true, Removed: []string{"/b/x.md"}})
	assert.Contains(t, buf.String(), "would remove /b/x.md")
	assert.Contains(t, buf.String(), "1 would remove, 0 forgotten")
}
