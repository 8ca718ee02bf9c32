package apply

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openmined/agentsync/internal/reconcile"
)

var ErrApplyFailed = errors.New("apply failed")

// Status is the terminal state of one plan entry.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusSkipped     Status = "skipped"
	StatusWouldCreate Status = "would-create"
	StatusWouldUpdate Status = "would-update"
	StatusFailed      Status = "failed"
	StatusRolledBack  Status = "rolled-back"
)

// ReasonUnchanged marks entries whose destination already holds the desired content.
const ReasonUnchanged = "unchanged"

// Outcome records what happened to a single plan entry.
type Outcome struct {
	Entry  *reconcile.Entry
	Status Status
	Reason string
	Backup string
	Linked bool
	Err    error
}

// Result summarizes one apply run.
type Result struct {
	RunID      string
	DryRun     bool
	Applied    int
	Skipped    int
	Failed     int
	Previewed  int
	Backups    []string
	Errors     []string
	Warnings   []string
	RolledBack bool
	Outcomes   []*Outcome
}

func (r *Result) record(o *Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusApplied:
		r.Applied++
	case StatusSkipped:
		r.Skipped++
	case StatusWouldCreate, StatusWouldUpdate:
		r.Previewed++
	case StatusFailed:
		r.Failed++
	}
	if o.Backup != "" {
		r.Backups = append(r.Backups, o.Backup)
	}
	if o.Err != nil {
		r.Errors = append(r.Errors, o.Err.Error())
	}
}

// OK reports whether the run finished without errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Written lists destinations that hold new content after the run.
func (r *Result) Written() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == StatusApplied {
			out = append(out, o.Entry.TargetPath)
		}
	}
	return out
}

// Err folds the accumulated error strings into a single error wrapping ErrApplyFailed.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrApplyFailed, strings.Join(r.Errors, "; "))
}

func (r *Result) String() string {
	if r.DryRun {
		return fmt.Sprintf("dry run: %d would change, %d skipped", r.Previewed, r.Skipped)
	}
	s := fmt.Sprintf("%d applied, %d skipped, %d failed", r.Applied, r.Skipped, r.Failed)
	if r.RolledBack {
		s += " (rolled back)"
	}
	return s
}
