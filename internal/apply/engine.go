package apply

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/openmined/agentsync/internal/manifest"
	"github.com/openmined/agentsync/internal/reconcile"
	"github.com/openmined/agentsync/internal/utils"
)

// Options control how an Engine touches the filesystem.
type Options struct {
	// DryRun evaluates every entry but writes nothing.
	DryRun bool
	// Link creates symlinks to source files instead of copying content.
	// Synthesized assets have no source file and are always copied.
	Link bool
	// BackupSuffix names backups; DefaultBackupSuffix when empty.
	BackupSuffix string
	// Manifest, if set, records every written destination after a successful run.
	Manifest manifest.Store
}

// Engine executes plans strictly in order.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}
	return &Engine{opts: opts}
}

// change is an entry that touched the filesystem and how to undo it.
type change struct {
	outcome  *Outcome
	dest     string
	backup   string
	created  bool
	prevLink string
	// dirs are the parents the write had to create, deepest first.
	dirs []string
}

// Apply runs plan. The first failing entry aborts the run and every change made
// earlier in the same run is reverted in reverse order.
func (e *Engine) Apply(ctx context.Context, plan *reconcile.Plan) *Result {
	res := &Result{RunID: uuid.NewString(), DryRun: e.opts.DryRun}
	log := slog.With("run", res.RunID)

	var changes []*change
	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			res.record(&Outcome{Entry: entry, Status: StatusFailed, Err: fmt.Errorf("apply cancelled: %w", err)})
			e.rollback(changes, res)
			return res
		}

		out, ch, err := e.applyEntry(entry)
		if ch != nil {
			changes = append(changes, ch)
		}
		if err != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("%s: %w", entry.TargetPath, err)
			res.record(out)
			log.Error("apply entry failed", "target", entry.Target, "path", entry.TargetPath, "error", err)
			e.rollback(changes, res)
			return res
		}

		res.record(out)
		log.Debug("apply entry", "target", entry.Target, "path", entry.TargetPath, "status", out.Status, "reason", out.Reason)
	}

	if !e.opts.DryRun && e.opts.Manifest != nil {
		if err := manifest.Add(ctx, e.opts.Manifest, res.Written()...); err != nil {
			log.Warn("manifest update failed", "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("manifest: %v", err))
		}
	}

	return res
}

func (e *Engine) applyEntry(entry *reconcile.Entry) (*Outcome, *change, error) {
	out := &Outcome{Entry: entry}
	if entry.Action == reconcile.ActionSkip {
		out.Status, out.Reason = StatusSkipped, entry.Reason
		return out, nil, nil
	}

	dest, src := entry.TargetPath, entry.Source
	link := e.opts.Link && !src.Synthesized()

	if hasContent(dest, src.Fingerprint) || (link && linksTo(dest, src.AbsPath)) {
		out.Status, out.Reason = StatusSkipped, ReasonUnchanged
		return out, nil, nil
	}

	info, err := os.Lstat(dest)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return out, nil, fmt.Errorf("stat destination: %w", err)
	}
	if exists && info.IsDir() {
		return out, nil, errors.New("destination is a directory")
	}

	if e.opts.DryRun {
		out.Status = StatusWouldCreate
		if exists {
			out.Status = StatusWouldUpdate
		}
		out.Reason = entry.Reason
		out.Linked = link
		return out, nil, nil
	}

	ch := &change{outcome: out, dest: dest, created: !exists}
	if !exists {
		ch.dirs = missingDirs(dest)
	}
	perm := fs.FileMode(defaultPerm)
	if exists {
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(dest)
			if err != nil {
				return out, nil, fmt.Errorf("read link: %w", err)
			}
			ch.prevLink = target
		case IsBackup(dest, e.opts.BackupSuffix):
			// never back up a backup
		default:
			bak, err := backupFile(dest, e.opts.BackupSuffix)
			if err != nil {
				return out, nil, err
			}
			ch.backup, out.Backup = bak, bak
			perm = info.Mode().Perm()
		}
	}

	if link {
		err = replaceWithLink(dest, src.AbsPath)
	} else {
		err = writeFileWithIntegrityCheck(dest, []byte(src.Content), src.Fingerprint, perm)
		if err == nil {
			err = verifyFile(dest, src.Fingerprint)
		}
	}
	if err != nil {
		return out, ch, err
	}

	out.Status, out.Reason, out.Linked = StatusApplied, entry.Reason, link
	return out, ch, nil
}

// rollback reverts changes newest first. A failed restore is recorded and the
// remaining changes are still reverted.
func (e *Engine) rollback(changes []*change, res *Result) {
	res.RolledBack = true
	for i := len(changes) - 1; i >= 0; i-- {
		ch := changes[i]
		if err := ch.revert(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("rollback %s: %v", ch.dest, err))
			slog.Error("rollback failed", "run", res.RunID, "path", ch.dest, "error", err)
			continue
		}
		if ch.outcome.Status == StatusApplied {
			ch.outcome.Status = StatusRolledBack
			res.Applied--
		}
	}
}

func (ch *change) revert() error {
	switch {
	case ch.backup != "":
		// a link would make the copy write through to its source
		if utils.IsSymlink(ch.dest) {
			if err := removeIfExists(ch.dest); err != nil {
				return err
			}
		}
		return utils.CopyFile(ch.backup, ch.dest)
	case ch.prevLink != "":
		if err := removeIfExists(ch.dest); err != nil {
			return err
		}
		return os.Symlink(ch.prevLink, ch.dest)
	case ch.created:
		if err := removeIfExists(ch.dest); err != nil {
			return err
		}
		for _, dir := range ch.dirs {
			// stops at the first directory something else has written into
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				break
			}
		}
	}
	return nil
}
