package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/openmined/agentsync/internal/apply"
	"github.com/openmined/agentsync/internal/assets"
	"github.com/openmined/agentsync/internal/clients"
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/openmined/agentsync/internal/syncer"
	"github.com/openmined/agentsync/internal/utils"
)

const diffContext = 2

// Printer renders runs for humans. Colors follow the capabilities of the writer.
type Printer struct {
	w io.Writer

	title  lipgloss.Style
	red    lipgloss.Style
	green  lipgloss.Style
	yellow lipgloss.Style
	cyan   lipgloss.Style
	gray   lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		title:  r.NewStyle().Bold(true),
		red:    r.NewStyle().Foreground(lipgloss.Color("9")),
		green:  r.NewStyle().Foreground(lipgloss.Color("10")),
		yellow: r.NewStyle().Foreground(lipgloss.Color("11")),
		cyan:   r.NewStyle().Foreground(lipgloss.Color("14")),
		gray:   r.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Assets prints one row per discovered asset.
func (p *Printer) Assets(list []*assets.Asset) {
	if len(list) == 0 {
		p.printf("%s\n", p.gray.Render("no assets found"))
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("CLIENT", "TYPE", "PATH", "KEY", "SIZE", "MODIFIED")
	for _, a := range list {
		modified := "-"
		if a.HasModTime() {
			modified = humanize.Time(a.ModTime)
		}
		t.Row(a.Client, string(a.Type), a.RelPath, a.CanonicalPath, humanize.Bytes(uint64(a.Size)), modified)
	}
	p.printf("%s\n%s asset(s)\n", t.Render(), humanize.Comma(int64(len(list))))
}

// Conflicts prints each conflict with its versions, newest first.
func (p *Printer) Conflicts(list []*reconcile.Conflict) {
	if len(list) == 0 {
		p.printf("%s\n", p.green.Render("no conflicts"))
		return
	}

	for _, c := range list {
		score := c.Similarity()
		p.printf("%s %s\n", p.yellow.Render("conflict"), p.title.Render(c.Key.String()))
		p.printf("  %s\n", p.gray.Render(fmt.Sprintf("%.0f%% similar, %s", score*100, assets.SimilarityLabel(score))))
		for i, v := range c.Versions {
			age := "unknown age"
			if v.HasModTime() {
				age = humanize.Time(v.ModTime)
			}
			p.printf("  #%d %s %s %s\n", i+1, p.cyan.Render(v.Client), v.RelPath, p.gray.Render(fmt.Sprintf("(%s, %s)", humanize.Bytes(uint64(v.Size)), age)))
		}
		if c.Resolution != nil {
			p.printf("  resolved: %s\n", c.Resolution)
		}
	}
	p.printf("%d conflict(s)\n", len(list))
}

// Plan prints every entry grouped by target. With showDiff, updates include a line diff
// against the destination's current content.
func (p *Printer) Plan(plan *reconcile.Plan, showDiff bool) {
	if len(plan.Entries) == 0 {
		p.printf("%s\n", p.green.Render("nothing to do"))
		return
	}

	target := ""
	for _, e := range plan.Entries {
		if e.Target != target {
			target = e.Target
			p.printf("%s\n", p.title.Render(target))
		}

		line := fmt.Sprintf("  %s %s", p.action(e.Action), e.TargetRel)
		if e.Renamed() {
			line += p.gray.Render(" (from " + e.Source.RelPath + ")")
		}
		p.printf("%s %s\n", line, p.gray.Render("<- "+e.Source.Client+", "+e.Reason))

		if showDiff && e.Action == reconcile.ActionUpdate {
			p.diff(currentContent(e), e.Source.Content)
		}
	}
	for _, k := range plan.SkippedKeys {
		p.printf("  %s %s\n", p.gray.Render("skip  "), k)
	}
	p.printf("%s\n", plan.Summary())
}

func (p *Printer) action(a reconcile.Action) string {
	label := fmt.Sprintf("%-6s", a)
	switch a {
	case reconcile.ActionCreate:
		return p.green.Render(label)
	case reconcile.ActionUpdate:
		return p.yellow.Render(label)
	default:
		return p.gray.Render(label)
	}
}

func currentContent(e *reconcile.Entry) string {
	if e.Existing != nil {
		return e.Existing.Content
	}
	data, err := os.ReadFile(e.TargetPath)
	if err != nil {
		return ""
	}
	return string(data)
}

func (p *Printer) diff(old, new string) {
	for _, l := range LineDiff(old, new, diffContext) {
		text := "      " + string(l.Op) + " " + l.Text
		switch l.Op {
		case '-':
			text = p.red.Render(text)
		case '+':
			text = p.green.Render(text)
		default:
			text = p.gray.Render(text)
		}
		p.printf("%s\n", text)
	}
}

// Result prints the outcome of an apply run.
func (p *Printer) Result(res *apply.Result) {
	if res == nil {
		return
	}
	for _, o := range res.Outcomes {
		if o.Status == apply.StatusSkipped {
			continue
		}
		status := string(o.Status)
		switch o.Status {
		case apply.StatusApplied:
			status = p.green.Render(status)
		case apply.StatusFailed, apply.StatusRolledBack:
			status = p.red.Render(status)
		default:
			status = p.yellow.Render(status)
		}
		extra := ""
		if o.Linked {
			extra = " (link)"
		}
		p.printf("  %s %s%s\n", status, o.Entry.TargetPath, p.gray.Render(extra))
	}

	for _, b := range res.Backups {
		p.printf("  %s %s\n", p.gray.Render("backup"), b)
	}
	for _, w := range res.Warnings {
		p.printf("  %s %s\n", p.yellow.Render("warning"), w)
	}
	for _, e := range res.Errors {
		p.printf("  %s %s\n", p.red.Render("error"), e)
	}

	summary := res.String()
	if res.OK() {
		summary = p.green.Render(summary)
	} else {
		summary = p.red.Render(summary)
	}
	p.printf("%s %s\n", summary, p.gray.Render("run "+res.RunID))
}

// Run prints a finished sync: plan first, then the apply result.
func (p *Printer) Run(run *syncer.Run, showDiff bool) {
	if run.Plan != nil {
		p.Plan(run.Plan, showDiff)
	}
	p.Result(run.Result)
}

func (p *Printer) Prune(res *syncer.PruneResult) {
	verb := "removed"
	if res.DryRun {
		verb = "would remove"
	}
	for _, path := range res.Removed {
		p.printf("  %s %s\n", p.yellow.Render(verb), path)
	}
	for _, path := range res.Forgotten {
		p.printf("  %s %s\n", p.gray.Render("forgot"), path)
	}
	for _, e := range res.Errors {
		p.printf("  %s %s\n", p.red.Render("error"), e)
	}
	p.printf("%d %s, %d forgotten\n", len(res.Removed), verb, len(res.Forgotten))
}

// Clients prints the client table in priority order.
func (p *Printer) Clients(t *clients.Table) {
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("CLIENT", "SCOPE", "ROOT", "TYPES", "")
	for _, d := range t.All() {
		types := make([]string, 0, len(d.Assets))
		for _, at := range d.Types() {
			types = append(types, string(at))
		}
		state := p.gray.Render("missing")
		if utils.DirExists(d.Root) {
			state = p.green.Render("present")
		}
		tbl.Row(d.Title(), string(d.Scope), d.Root, strings.Join(types, ","), state)
	}
	p.printf("%s\n", tbl.Render())
}
